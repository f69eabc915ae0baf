// Package engine orchestrates battery discovery, hardware writes, config
// persistence and the boot-time service into the operations the CLI
// exposes. It holds no state of its own between calls; the only durable
// state is the config file and the hardware attributes.
package engine

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Charge limit bounds. Below 50 the battery would rarely charge at all;
// 100 means no limit, which is the hardware default.
const (
	MinLimit = 50
	MaxLimit = 100
)

// BatteryHandle is one discovered battery with charge-control support.
type BatteryHandle interface {
	Name() string
	// Limit reads the limit currently configured in hardware.
	Limit() (int, error)
	// SetLimit writes a new limit. Values outside [MinLimit,MaxLimit] are
	// rejected before any hardware write.
	SetLimit(v int) error
	// Capacity reads the current charge percentage.
	Capacity() (int, error)
}

// Locator resolves the active battery. It is called once per operation:
// discovery is cheap, and re-resolving avoids caching a stale device.
type Locator interface {
	Find() (BatteryHandle, error)
}

// Store persists the desired charge limit across reboots. Load reports
// ok=false when nothing has been configured yet; that is not an error.
type Store interface {
	Load() (limit int, ok bool, err error)
	Save(limit int) error
	Delete() error
}

// GovernorController switches CPU frequency governors.
type GovernorController interface {
	Governors() ([]string, error)
	Current() (string, error)
	SetGovernor(name string) error
}

// TaskManager manages the boot-time service that re-applies the persisted
// limit on every boot.
type TaskManager interface {
	Install() error
	Uninstall() error
}

// Engine wires the collaborators together. Construct one with New; the
// zero value is not usable.
type Engine struct {
	locator Locator
	store   Store
	cpu     GovernorController
	tasks   TaskManager
}

func New(locator Locator, store Store, cpu GovernorController, tasks TaskManager) *Engine {
	return &Engine{
		locator: locator,
		store:   store,
		cpu:     cpu,
		tasks:   tasks,
	}
}

// Status is what the status operation reports. Capacity is best-effort: a
// battery that cannot report it degrades to HasCapacity=false instead of
// failing the whole call.
type Status struct {
	Battery     string
	Limit       int
	HasLimit    bool
	Capacity    int
	HasCapacity bool
}

// Status reports the configured limit and the current capacity. When
// nothing is persisted yet, the limit falls back to whatever the hardware
// currently reports.
func (e *Engine) Status() (*Status, error) {
	bat, err := e.locator.Find()
	if err != nil {
		return nil, err
	}

	st := &Status{Battery: bat.Name()}

	limit, ok, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		st.Limit = limit
		st.HasLimit = true
	} else if hw, err := bat.Limit(); err == nil {
		st.Limit = hw
		st.HasLimit = true
	}

	if c, err := bat.Capacity(); err == nil {
		st.Capacity = c
		st.HasCapacity = true
	} else {
		logrus.WithError(err).Debug("could not read battery capacity")
	}

	return st, nil
}

// Get returns the persisted limit only, independent of hardware state.
func (e *Engine) Get() (int, bool, error) {
	return e.store.Load()
}

// Set validates the limit, applies it to hardware and then persists it.
// The ordering matters: a value that failed to apply must never end up in
// the store, so "configured" and "intended" stay in sync. If persisting
// fails after the hardware write succeeded, ErrPersistenceFailed tells the
// caller the limit is live now but will not survive a reboot.
func (e *Engine) Set(v int) error {
	if v < MinLimit || v > MaxLimit {
		return pkgerrors.Wrapf(ErrInvalidRange, "got %d", v)
	}

	bat, err := e.locator.Find()
	if err != nil {
		return err
	}

	if err := bat.SetLimit(v); err != nil {
		return err
	}
	logrus.Debugf("charge limit %d%% applied to %s", v, bat.Name())

	if err := e.store.Save(v); err != nil {
		return pkgerrors.Wrapf(ErrPersistenceFailed, "%v", err)
	}

	return nil
}

// Reapply loads the persisted limit and writes it to hardware. The
// boot-time service runs this once per boot; it is equally usable on
// demand to repair hardware state, e.g. after resuming from hibernation.
// A missing config is a no-op.
func (e *Engine) Reapply() error {
	v, ok, err := e.store.Load()
	if err != nil {
		return err
	}
	if !ok {
		logrus.Debug("no charge limit configured, nothing to apply")
		return nil
	}

	bat, err := e.locator.Find()
	if err != nil {
		return err
	}

	return bat.SetLimit(v)
}

// Install registers the boot-time service. Re-running it overwrites the
// existing registration.
func (e *Engine) Install() error {
	return e.tasks.Install()
}

// Uninstall removes the boot-time service, resets the hardware limit to
// 100% and deletes the config. All three are attempted even if one fails:
// a partial uninstall must never silently leave the battery capped.
func (e *Engine) Uninstall() error {
	var errs []error

	if err := e.tasks.Uninstall(); err != nil {
		errs = append(errs, err)
	}

	if bat, err := e.locator.Find(); err != nil {
		logrus.WithError(err).Warn("no controllable battery found, skipping charge limit reset")
	} else if err := bat.SetLimit(MaxLimit); err != nil {
		errs = append(errs, pkgerrors.Wrap(err, "failed to reset charge limit to 100%"))
	}

	if err := e.store.Delete(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CPUStatus returns the active CPU governor.
func (e *Engine) CPUStatus() (string, error) {
	return e.cpu.Current()
}

// CPUList returns the governors advertised by the hardware, in the order
// the kernel lists them.
func (e *Engine) CPUList() ([]string, error) {
	return e.cpu.Governors()
}

// CPUSet switches the active CPU governor on all cores. The choice does
// not survive a reboot.
func (e *Engine) CPUSet(name string) error {
	return e.cpu.SetGovernor(name)
}
