package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"av1janitor/internal/deps"
)

const renderNodeCheckName = "Render node"

// renderNodeRoot is where DRM render devices appear on Linux.
var renderNodeRoot = "/dev/dri"

// SetRenderNodeRootForTests redirects the render node scan and returns a
// restore function.
func SetRenderNodeRootForTests(root string) func() {
	previous := renderNodeRoot
	renderNodeRoot = root
	return func() {
		renderNodeRoot = previous
	}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable, writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFFmpeg resolves and validates the ffmpeg installation.
func CheckFFmpeg(ctx context.Context, configured string) Result {
	const name = "FFmpeg"

	binary, err := deps.Resolve(configured)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	install, err := deps.Validate(ctx, binary)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (version %s, av1_qsv available)", install.FFmpegPath, install.Version),
	}
}

// CheckRenderNode reports whether a DRM render device is visible. Without
// one, encodes fall back to ffmpeg's own QSV device selection, which may
// still work; the check exists so operators notice missing GPU drivers
// before a batch of encodes fails.
func CheckRenderNode() Result {
	entries, err := os.ReadDir(renderNodeRoot)
	if err != nil {
		return Result{Name: renderNodeCheckName, Detail: fmt.Sprintf("%s not readable (%v)", renderNodeRoot, err)}
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "renderD") {
			return Result{
				Name:   renderNodeCheckName,
				Passed: true,
				Detail: fmt.Sprintf("%s/%s", renderNodeRoot, entry.Name()),
			}
		}
	}
	return Result{Name: renderNodeCheckName, Detail: fmt.Sprintf("no renderD* device under %s", renderNodeRoot)}
}

// CheckSystemDeps evaluates the external binaries the pipeline invokes.
// Both the daemon and the CLI status command use this to avoid
// duplicating the requirements list.
func CheckSystemDeps(ffmpegPath, ffprobePath string) []deps.Status {
	return deps.CheckBinaries(deps.DefaultRequirements(ffmpegPath, ffprobePath))
}
