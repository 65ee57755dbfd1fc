// Package main implements av1top, a read-only terminal view of encode
// activity. It polls the job directory and the history catalog on an
// interval and redraws; the engine owns the records, av1top never
// writes them.
package main
