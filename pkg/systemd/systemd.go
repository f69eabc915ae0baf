// Package systemd registers the boot-time service that re-applies the
// persisted charge limit on every boot.
package systemd

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ampurr/ampurr/pkg/engine"
)

// UnitName is the name of the oneshot unit.
const UnitName = "ampurr.service"

// DefaultUnitDir is where admin-managed units live.
const DefaultUnitDir = "/etc/systemd/system"

// multi-user.target is late enough that the power-supply class is
// populated; running before the battery is enumerable would be useless.
const unitTemplate = `[Unit]
Description=ampurr: persistently sets the battery charge threshold
After=multi-user.target

[Service]
Type=oneshot
ExecStart=/path/to/ampurr battery reapply

[Install]
WantedBy=multi-user.target
`

// managerBus is the slice of org.freedesktop.systemd1.Manager this package
// needs. Tests substitute a fake.
type managerBus interface {
	Reload() error
	EnableUnitFiles(units []string) error
	DisableUnitFiles(units []string) error
	StartUnit(name string) error
	StopUnit(name string) error
}

// Manager installs and removes the boot-time unit. It talks to systemd
// over the system bus; the connection is made lazily so read-only engine
// operations never touch D-Bus.
type Manager struct {
	// UnitDir overrides DefaultUnitDir, mainly for tests.
	UnitDir string

	bus managerBus
}

func New() *Manager {
	return &Manager{UnitDir: DefaultUnitDir}
}

func (m *Manager) unitPath() string {
	return filepath.Join(m.UnitDir, UnitName)
}

func (m *Manager) manager() (managerBus, error) {
	if m.bus == nil {
		bus, err := connectSystemBus()
		if err != nil {
			return nil, pkgerrors.Wrapf(engine.ErrTaskRegistration, "connecting to the system bus: %v", err)
		}
		m.bus = bus
	}
	return m.bus, nil
}

func unitContent(exePath string) string {
	return strings.ReplaceAll(unitTemplate, "/path/to/ampurr", exePath)
}

// Install writes the unit file and enables and starts it, so the persisted
// limit is applied right away and on every subsequent boot. Re-running it
// overwrites an existing unit definition instead of erroring.
func (m *Manager) Install() error {
	exePath, err := os.Executable()
	if err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "resolving current executable: %v", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "resolving current executable: %v", err)
	}

	if err := os.MkdirAll(m.UnitDir, 0755); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "creating %s: %v", m.UnitDir, err)
	}

	if _, err := os.Stat(m.unitPath()); err == nil {
		logrus.Debugf("%s already exists, overwriting", m.unitPath())
	}

	logrus.Infof("writing %s", m.unitPath())
	if err := os.WriteFile(m.unitPath(), []byte(unitContent(exePath)), 0644); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "writing %s: %v", m.unitPath(), err)
	}

	bus, err := m.manager()
	if err != nil {
		return err
	}

	if err := bus.Reload(); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "systemd daemon-reload: %v", err)
	}
	if err := bus.EnableUnitFiles([]string{UnitName}); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "enabling %s: %v", UnitName, err)
	}

	// Matches `systemctl enable --now`: apply any persisted limit
	// immediately, not just on the next boot.
	if err := bus.StartUnit(UnitName); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "starting %s: %v", UnitName, err)
	}

	return nil
}

// Uninstall disables and removes the unit. A unit that was never installed
// (or already removed) is not an error; the caller still gets to reset the
// hardware limit.
func (m *Manager) Uninstall() error {
	if _, err := os.Stat(m.unitPath()); err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("%s not present, nothing to remove", m.unitPath())
			return nil
		}
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "stat %s: %v", m.unitPath(), err)
	}

	bus, err := m.manager()
	if err != nil {
		return err
	}

	// The unit is oneshot and almost certainly inactive; a failed stop is
	// not worth failing the uninstall over.
	if err := bus.StopUnit(UnitName); err != nil {
		logrus.Debugf("stopping %s: %v", UnitName, err)
	}

	if err := bus.DisableUnitFiles([]string{UnitName}); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "disabling %s: %v", UnitName, err)
	}

	logrus.Infof("removing %s", m.unitPath())
	if err := os.Remove(m.unitPath()); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "removing %s: %v", m.unitPath(), err)
	}

	if err := bus.Reload(); err != nil {
		return pkgerrors.Wrapf(engine.ErrTaskRegistration, "systemd daemon-reload: %v", err)
	}

	return nil
}
