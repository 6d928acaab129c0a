// Package monitor keeps exactly one tailer running per log category.
//
// A Monitor is Idle until it is offered a candidate file that
// rotation.ShouldReplace accepts. Offers are serialized by a per-category
// mutex because the directory notifier and the periodic rescan can race to
// report the same rotation. A replacement opens the new file at its
// end-of-file first, then cancels the old tailer and waits for its goroutine
// to return, and only then publishes the new file as current. The old tailer
// therefore never hands a line to the handler after the swap.
//
// When the tailed file vanishes, or reading it fails, the tail goroutine
// reports back to the monitor loop, which returns to Idle and immediately
// rescans so the category does not stay unmonitored.
package monitor
