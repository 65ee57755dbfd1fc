// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no av1janitor-specific dependencies and could be
// extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties including frame rates, pixel
//     format, disposition, and tags
//   - Format: container-level metadata (format name, duration, size, tags)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
package ffprobe
