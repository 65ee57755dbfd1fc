// Package main hosts the av1d CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into daemon
// runs, one-shot batch passes, status and job reporting, and configuration
// scaffolding. Configuration resolution and logger construction are
// centralized here so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
