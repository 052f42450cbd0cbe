package systemdUtils

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Manager wraps a systemd D-Bus connection for the handful of operations
// ConfigureInitService needs: reloading unit files after writing them,
// and starting/enabling (or stopping/disabling on revert) the daemon
// service and socket units.
type Manager struct {
	conn *dbus.Conn
}

func NewManager(ctx context.Context) (*Manager, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd over D-Bus: %w", err)
	}

	return &Manager{conn: conn}, nil
}

func (m *Manager) Close() {
	m.conn.Close()
}

func (m *Manager) DaemonReload(ctx context.Context) error {
	return m.conn.ReloadContext(ctx)
}

// EnableAndStart enables unitName at boot and starts it immediately,
// matching `systemctl enable --now`.
func (m *Manager) EnableAndStart(ctx context.Context, unitName string) error {
	if _, _, err := m.conn.EnableUnitFilesContext(ctx, []string{unitName}, false, true); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unitName, err)
	}

	resultCh := make(chan string, 1)
	if _, err := m.conn.StartUnitContext(ctx, unitName, "replace", resultCh); err != nil {
		return fmt.Errorf("failed to start %s: %w", unitName, err)
	}

	result := <-resultCh
	if result != "done" {
		return fmt.Errorf("starting %s finished with result %q", unitName, result)
	}

	return nil
}

// StopAndDisable stops unitName and disables it, matching
// `systemctl disable --now`. Used from ConfigureInitService.Revert.
func (m *Manager) StopAndDisable(ctx context.Context, unitName string) error {
	resultCh := make(chan string, 1)
	if _, err := m.conn.StopUnitContext(ctx, unitName, "replace", resultCh); err != nil {
		return fmt.Errorf("failed to stop %s: %w", unitName, err)
	}
	<-resultCh

	if _, err := m.conn.DisableUnitFilesContext(ctx, []string{unitName}, false); err != nil {
		return fmt.Errorf("failed to disable %s: %w", unitName, err)
	}

	return nil
}

// IsActive reports whether unitName is currently in the "active" state,
// used by the self-test daemon-reachability check (§4.5).
func (m *Manager) IsActive(ctx context.Context, unitName string) (bool, error) {
	props, err := m.conn.GetUnitPropertiesContext(ctx, unitName)
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", unitName, err)
	}

	state, ok := props["ActiveState"].(string)
	if !ok {
		return false, fmt.Errorf("unit %s has no ActiveState property", unitName)
	}

	return state == "active", nil
}
