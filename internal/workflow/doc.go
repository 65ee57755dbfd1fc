// Package workflow schedules per-file encode pipelines over the watched
// library.
//
// The Manager scans the watched directories, admits candidates through a
// fixed gauntlet (in-flight dedup, skip marker, minimum size, stability
// sampling), and runs each admitted file through probe, decision, encode,
// size gate, and replacement as one unit of work. A counting semaphore
// bounds how many encodes run at once; the in-flight path set guarantees
// no two workflows ever own the same file.
//
// Shutdown is cooperative: the context passed to Start or RunBatch is
// polled only at admission points, so a cancel stops new work while every
// in-flight encode runs to a durable terminal state. Only the per-process
// watchdog inside the supervisor can abort a running encode.
package workflow
