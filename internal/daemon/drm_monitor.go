package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pilebones/go-udev/netlink"

	"av1janitor/internal/logging"
	"av1janitor/internal/preflight"
)

// drmMonitor listens for udev netlink events on the drm subsystem and
// tracks whether a QSV-capable render node is attached. The flag is
// observational; the command builder re-probes the device tree before
// every encode.
type drmMonitor struct {
	logger *slog.Logger

	available atomic.Bool

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newDRMMonitor(logger *slog.Logger) *drmMonitor {
	return &drmMonitor{
		logger: logging.NewComponentLogger(logger, "drm-monitor"),
	}
}

// Start seeds the availability flag from a device scan and begins
// listening for hotplug events. A netlink connection failure is
// non-fatal: the daemon still works, it just stops noticing hotplug.
func (m *drmMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	m.available.Store(preflight.CheckRenderNode().Passed)

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; render node changes will go unnoticed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon may open netlink sockets"),
			logging.String(logging.FieldImpact, "hotplug detection unavailable"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("drm hotplug monitor started",
		logging.String(logging.FieldEventType, "drm_monitor_started"),
		logging.Bool("render_node_available", m.available.Load()),
	)
	return nil
}

// Stop shuts down the netlink subscription.
func (m *drmMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("drm hotplug monitor stopped",
		logging.String(logging.FieldEventType, "drm_monitor_stopped"),
	)
}

// Running reports whether the netlink subscription is active.
func (m *drmMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Available reports the last observed render node state.
func (m *drmMonitor) Available() bool {
	if m == nil {
		return false
	}
	return m.available.Load()
}

func (m *drmMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, drmMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "hotplug detection may be affected"),
			)
		}
	}
}

// drmMatcher matches add and remove events on the drm subsystem.
func drmMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "drm",
		},
	})
	return rules
}

func (m *drmMonitor) handleEvent(uevent netlink.UEvent) {
	name := renderNodeName(uevent)
	if name == "" {
		return
	}

	switch uevent.Action {
	case netlink.ADD:
		m.available.Store(true)
		m.logger.Info("render node attached",
			logging.String(logging.FieldEventType, "render_node_attached"),
			logging.String("device", name),
		)
	case netlink.REMOVE:
		m.available.Store(false)
		logging.WarnWithContext(m.logger, "render node detached", "render_node_detached",
			logging.String("device", name),
			logging.String(logging.FieldErrorHint, "check the GPU driver and hardware"),
			logging.String(logging.FieldImpact, "new encodes fail until the device returns"),
		)
	}
}

// renderNodeName extracts the render node base name from a uevent, or
// empty when the event concerns some other drm device such as a card or
// connector.
func renderNodeName(uevent netlink.UEvent) string {
	name := uevent.Env["DEVNAME"]
	if name == "" {
		if devpath := uevent.Env["DEVPATH"]; devpath != "" {
			name = devpath
		} else {
			name = uevent.KObj
		}
	}
	base := filepath.Base(name)
	if !strings.HasPrefix(base, "renderD") {
		return ""
	}
	return base
}
