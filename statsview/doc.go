// Package statsview serves live runtime statistics (heap, goroutines, GC
// pauses) over HTTP while the emulator runs. The server is only compiled
// in with the statsview build tag; without it Launch reports that the
// viewer is unavailable.
package statsview
