// Package ui implements the optional eftwatch dashboard with Bubble Tea.
//
// The dashboard renders on stderr so stdout keeps carrying the trigger
// stream. It polls a state.Store on a ticker, shows the file followed for
// each category with the statistics flag and the recent events, and
// previews the last lines of both current files with logtail.Read.
//
// Keys:
//
//	x       reset the statistics flag
//	r       rescan the log directory now
//	p       toggle the file preview
//	t       cycle theme (saved to prefs)
//	j/k     scroll
//	?       help
//	q       quit and stop monitoring
package ui
