package systemd

import (
	"github.com/godbus/dbus/v5"
)

const (
	systemdDest  = "org.freedesktop.systemd1"
	systemdPath  = dbus.ObjectPath("/org/freedesktop/systemd1")
	managerIface = "org.freedesktop.systemd1.Manager"
)

// systemdDBus drives org.freedesktop.systemd1.Manager on the system bus.
type systemdDBus struct {
	conn *dbus.Conn
}

func connectSystemBus() (*systemdDBus, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return &systemdDBus{conn: conn}, nil
}

func (s *systemdDBus) object() dbus.BusObject {
	return s.conn.Object(systemdDest, systemdPath)
}

func (s *systemdDBus) Reload() error {
	return s.object().Call(managerIface+".Reload", 0).Err
}

func (s *systemdDBus) EnableUnitFiles(units []string) error {
	// runtime=false so the enablement persists, force=true so a re-run
	// replaces existing symlinks.
	return s.object().Call(managerIface+".EnableUnitFiles", 0, units, false, true).Err
}

func (s *systemdDBus) DisableUnitFiles(units []string) error {
	return s.object().Call(managerIface+".DisableUnitFiles", 0, units, false).Err
}

func (s *systemdDBus) StartUnit(name string) error {
	return s.object().Call(managerIface+".StartUnit", 0, name, "replace").Err
}

func (s *systemdDBus) StopUnit(name string) error {
	return s.object().Call(managerIface+".StopUnit", 0, name, "replace").Err
}
