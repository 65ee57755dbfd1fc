package daemon

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestDRMMatcher(t *testing.T) {
	matcher := drmMatcher()
	if matcher == nil {
		t.Fatal("expected non-nil matcher")
	}

	addEvent := netlink.UEvent{
		Action: netlink.ADD,
		Env: map[string]string{
			"SUBSYSTEM": "drm",
			"DEVNAME":   "dri/renderD128",
		},
	}
	if !matcher.Evaluate(addEvent) {
		t.Error("expected matcher to accept drm add event")
	}

	removeEvent := netlink.UEvent{
		Action: netlink.REMOVE,
		Env: map[string]string{
			"SUBSYSTEM": "drm",
			"DEVNAME":   "dri/renderD128",
		},
	}
	if !matcher.Evaluate(removeEvent) {
		t.Error("expected matcher to accept drm remove event")
	}

	blockEvent := netlink.UEvent{
		Action: netlink.ADD,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"DEVNAME":   "sda1",
		},
	}
	if matcher.Evaluate(blockEvent) {
		t.Error("expected matcher to reject non-drm subsystem")
	}

	changeEvent := netlink.UEvent{
		Action: netlink.CHANGE,
		Env: map[string]string{
			"SUBSYSTEM": "drm",
			"DEVNAME":   "dri/renderD128",
		},
	}
	if matcher.Evaluate(changeEvent) {
		t.Error("expected matcher to reject change action")
	}
}

func TestHandleEventTracksAvailability(t *testing.T) {
	m := newDRMMonitor(nil)

	m.handleEvent(netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVNAME": "dri/renderD128"},
	})
	if !m.Available() {
		t.Fatal("render node add not recorded")
	}

	m.handleEvent(netlink.UEvent{
		Action: netlink.REMOVE,
		Env:    map[string]string{"DEVNAME": "dri/renderD128"},
	})
	if m.Available() {
		t.Fatal("render node remove not recorded")
	}
}

func TestHandleEventIgnoresCardNodes(t *testing.T) {
	m := newDRMMonitor(nil)

	m.handleEvent(netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVNAME": "dri/card0"},
	})
	if m.Available() {
		t.Fatal("card node flipped the render availability flag")
	}
}

func TestRenderNodeName(t *testing.T) {
	cases := []struct {
		name  string
		event netlink.UEvent
		want  string
	}{
		{
			name:  "devname",
			event: netlink.UEvent{Env: map[string]string{"DEVNAME": "dri/renderD129"}},
			want:  "renderD129",
		},
		{
			name: "devpath fallback",
			event: netlink.UEvent{Env: map[string]string{
				"DEVPATH": "/devices/pci0000:00/0000:00:02.0/drm/renderD128",
			}},
			want: "renderD128",
		},
		{
			name:  "card node",
			event: netlink.UEvent{Env: map[string]string{"DEVNAME": "dri/card1"}},
			want:  "",
		},
		{
			name:  "empty event",
			event: netlink.UEvent{Env: map[string]string{}},
			want:  "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderNodeName(tc.event); got != tc.want {
				t.Fatalf("renderNodeName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDRMMonitorStopStartIdempotency(t *testing.T) {
	t.Run("stop on nil monitor is safe", func(t *testing.T) {
		var m *drmMonitor
		m.Stop()
	})

	t.Run("stop on unstarted monitor is safe", func(t *testing.T) {
		m := newDRMMonitor(nil)
		m.Stop()
		m.Stop()
		if m.Running() {
			t.Error("unstarted monitor reports running")
		}
	})
}
