package deps

import (
	"context"
	"os/exec"
)

var commandOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SetCommandOutputForTests replaces external command execution and returns
// a restore function.
func SetCommandOutputForTests(fn func(context.Context, string, ...string) ([]byte, error)) func() {
	previous := commandOutput
	commandOutput = fn
	return func() {
		commandOutput = previous
	}
}
