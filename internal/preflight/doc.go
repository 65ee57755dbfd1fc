// Package preflight provides readiness checks for the binaries, paths,
// and hardware the encode pipeline depends on.
//
// These checks run in two contexts:
//   - The daemon runs them at startup. Configuration failures (missing
//     directories, unusable ffmpeg) are fatal; the hardware check is
//     advisory because ffmpeg re-probes the device per encode anyway.
//   - The CLI "av1d status" command displays each check so an operator
//     can see at a glance why nothing is being encoded.
package preflight
