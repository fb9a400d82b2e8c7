// Package alarm provides the in-process timer service behind the wallpaper
// scheduler. A single goroutine owns a min-heap of armed alarms keyed by
// request code and sleeps at most a minute at a time, so wall clock steps
// and system suspend delay an alarm by no more than that cap.
//
// Alarms are not persisted. The scheduler re-arms everything from its own
// state on startup.
package alarm
