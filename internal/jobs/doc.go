// Package jobs persists one JSON document per encode attempt. Documents
// are single-writer: the workflow owning a source path is the only writer
// for that job's lifetime, so the store needs no locking beyond atomic
// file replacement. Dashboards and CLI views read the documents without
// coordinating with the daemon.
package jobs
