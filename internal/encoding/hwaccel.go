package encoding

import (
	"os"
	"strings"
)

// deviceRoot is where DRM render nodes appear on Linux.
var deviceRoot = "/dev/dri"

// SetDeviceRootForTests redirects render node discovery and returns a
// restore function.
func SetDeviceRootForTests(root string) func() {
	previous := deviceRoot
	deviceRoot = root
	return func() {
		deviceRoot = previous
	}
}

// QSVDevice returns the -init_hw_device value for this host. A visible
// DRM render node selects the VAAPI child device; without one ffmpeg
// picks its own QSV backend.
func QSVDevice() string {
	entries, err := os.ReadDir(deviceRoot)
	if err != nil {
		return "qsv=hw"
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "renderD") {
			return "qsv=hw,child_device_type=vaapi"
		}
	}
	return "qsv=hw"
}
