// Package encoding plans ffmpeg invocations for AV1 re-encodes and
// supervises the resulting processes. Planning is pure and owns every
// per-file decision (stream selection, quality, hardware surface);
// supervision owns timeouts, stderr capture, and progress decoding.
package encoding
