// Package trigger turns marker lines from the two log categories into
// StatisticsFound and ScreenshotTrigger events.
//
// The network side raises a level-triggered flag the first time a line
// contains the statistics marker. The backend side, seeing the response
// marker while the flag is raised, waits through a short confirmation window.
// Any further backend output during the window means the marker was part of a
// burst and is ignored. A quiet window commits: ScreenshotTrigger is emitted
// and the flag drops.
//
// The flag and event emission share one mutex, so events always alternate
// and a StatisticsFound is always delivered before the ScreenshotTrigger it
// enabled.
package trigger
