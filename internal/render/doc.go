// Package render schedules per-pixel divergence cells across worker
// goroutines. [Tiler] produces a single field in one shot; [Session]
// keeps every cell alive between frames so a view can be advanced,
// scrubbed and probed without re-simulating.
package render
