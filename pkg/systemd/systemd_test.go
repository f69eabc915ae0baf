package systemd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ampurr/ampurr/pkg/engine"
)

type fakeBus struct {
	calls []string

	reloadErr  error
	enableErr  error
	disableErr error
}

func (f *fakeBus) Reload() error {
	f.calls = append(f.calls, "reload")
	return f.reloadErr
}

func (f *fakeBus) EnableUnitFiles(units []string) error {
	f.calls = append(f.calls, "enable "+strings.Join(units, ","))
	return f.enableErr
}

func (f *fakeBus) DisableUnitFiles(units []string) error {
	f.calls = append(f.calls, "disable "+strings.Join(units, ","))
	return f.disableErr
}

func (f *fakeBus) StartUnit(name string) error {
	f.calls = append(f.calls, "start "+name)
	return nil
}

func (f *fakeBus) StopUnit(name string) error {
	f.calls = append(f.calls, "stop "+name)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeBus) {
	t.Helper()
	bus := &fakeBus{}
	return &Manager{UnitDir: t.TempDir(), bus: bus}, bus
}

func TestUnitContent(t *testing.T) {
	content := unitContent("/usr/local/bin/ampurr")

	for _, want := range []string{
		"Type=oneshot",
		"ExecStart=/usr/local/bin/ampurr battery reapply",
		"After=multi-user.target",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("unit content is missing %q:\n%s", want, content)
		}
	}
}

func TestInstall(t *testing.T) {
	m, bus := newTestManager(t)

	if err := m.Install(); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}

	b, err := os.ReadFile(m.unitPath())
	if err != nil {
		t.Fatalf("unit file not written: %v", err)
	}
	if !strings.Contains(string(b), "battery reapply") {
		t.Fatalf("unit file does not invoke the reapply verb:\n%s", string(b))
	}

	want := []string{"reload", "enable " + UnitName, "start " + UnitName}
	if len(bus.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, bus.calls)
	}
	for i := range want {
		if bus.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, bus.calls)
		}
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Install(); err != nil {
		t.Fatal(err)
	}
	if err := m.Install(); err != nil {
		t.Fatalf("second Install returned error: %v", err)
	}

	entries, err := os.ReadDir(m.UnitDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one unit file, got %d", len(entries))
	}
}

func TestInstallEnableFailure(t *testing.T) {
	m, bus := newTestManager(t)
	bus.enableErr = errors.New("boom")

	err := m.Install()
	if !errors.Is(err, engine.ErrTaskRegistration) {
		t.Fatalf("expected ErrTaskRegistration, got %v", err)
	}
}

func TestUninstall(t *testing.T) {
	m, bus := newTestManager(t)

	if err := m.Install(); err != nil {
		t.Fatal(err)
	}
	bus.calls = nil

	if err := m.Uninstall(); err != nil {
		t.Fatalf("Uninstall returned error: %v", err)
	}

	if _, err := os.Stat(m.unitPath()); !os.IsNotExist(err) {
		t.Fatalf("unit file still present after uninstall")
	}

	want := []string{"stop " + UnitName, "disable " + UnitName, "reload"}
	if len(bus.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, bus.calls)
	}
	for i := range want {
		if bus.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, bus.calls)
		}
	}
}

func TestUninstallMissingUnit(t *testing.T) {
	m, bus := newTestManager(t)

	if err := m.Uninstall(); err != nil {
		t.Fatalf("Uninstall of a missing unit must not error, got %v", err)
	}
	if len(bus.calls) != 0 {
		t.Fatalf("no bus calls expected for a missing unit, got %v", bus.calls)
	}
}

func TestUninstallDisableFailure(t *testing.T) {
	m, bus := newTestManager(t)
	if err := m.Install(); err != nil {
		t.Fatal(err)
	}
	bus.disableErr = errors.New("boom")

	err := m.Uninstall()
	if !errors.Is(err, engine.ErrTaskRegistration) {
		t.Fatalf("expected ErrTaskRegistration, got %v", err)
	}
	// The unit file must survive so a retry can still disable it properly.
	if _, err := os.Stat(filepath.Join(m.UnitDir, UnitName)); err != nil {
		t.Fatalf("unit file missing after failed disable: %v", err)
	}
}
