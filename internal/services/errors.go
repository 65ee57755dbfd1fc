package services

import (
	"errors"
	"fmt"
	"strings"
)

// Marker errors classify failures by subsystem so callers can branch on
// errors.Is without parsing messages.
var (
	// ErrProbe indicates stream inspection of a source file failed.
	ErrProbe = errors.New("probe failure")
	// ErrBuild indicates an encode plan could not be constructed.
	ErrBuild = errors.New("plan failure")
	// ErrSupervision indicates the encoder process could not be run
	// or observed.
	ErrSupervision = errors.New("supervision failure")
	// ErrTimeout indicates an encode exceeded its deadline and was
	// terminated by the watchdog.
	ErrTimeout = errors.New("encode timeout")
	// ErrReplacement indicates the finished output could not be swapped
	// into place over the original.
	ErrReplacement = errors.New("replacement failure")
	// ErrPersistence indicates job or history state could not be saved
	// or loaded.
	ErrPersistence = errors.New("persistence failure")
	// ErrValidation indicates invalid input or state.
	ErrValidation = errors.New("validation failure")
	// ErrConfiguration indicates invalid or missing configuration.
	ErrConfiguration = errors.New("configuration failure")
)

// Wrap combines a marker error with stage and operation detail plus the
// underlying cause. Both the marker and cause remain matchable through
// errors.Is and errors.As.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// FailureKind maps an error to the short classification attached to
// failure log events.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrProbe):
		return "probe"
	case errors.Is(err, ErrBuild):
		return "plan"
	case errors.Is(err, ErrSupervision):
		return "encode"
	case errors.Is(err, ErrReplacement):
		return "replace"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}
