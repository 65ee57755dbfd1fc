// Package daemon owns the long-running process: single-instance locking,
// workflow lifecycle, and the DRM hotplug monitor.
//
// Exactly one daemon may run per state directory; a second instance fails
// fast at the lock instead of racing the first over the same library. The
// hotplug monitor is observational only: the command builder re-probes the
// render node before every encode, so losing the device never corrupts
// in-flight state, it just makes new encodes fail until the device
// returns.
package daemon
