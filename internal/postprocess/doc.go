// Package postprocess judges finished encodes and swaps the winners into
// place. The size gate is the only quality bar: an encode that does not
// shrink the file below the configured fraction is discarded and the
// source is marked so it is never tried again.
package postprocess
