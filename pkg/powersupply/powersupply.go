// Package powersupply discovers batteries under the kernel power-supply
// class and reads/writes their charge-control attributes.
package powersupply

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ampurr/ampurr/pkg/engine"
)

// DefaultRoot is where the kernel exposes power-supply devices.
const DefaultRoot = "/sys/class/power_supply"

// Charge-control attribute candidates, most common first. Vendors disagree
// on naming: charge_control_end_threshold is the mainline attribute, while
// charge_stop_threshold shows up on some older ThinkPad and Huawei trees.
var controlAttrs = []string{
	"charge_control_end_threshold",
	"charge_stop_threshold",
}

// Battery is a handle to one discovered battery device.
type Battery struct {
	name        string
	dir         string
	controlPath string
}

// Name returns the device name, e.g. "BAT0".
func (b *Battery) Name() string { return b.name }

// ControlPath returns the path of the charge-control attribute in use.
func (b *Battery) ControlPath() string { return b.controlPath }

// Find scans root for a battery with charge-control support. If several
// batteries qualify, the first one in sorted device order wins; batteries
// on multi-battery systems are not controlled independently. Pass "" for
// the default root.
func Find(root string) (*Battery, error) {
	if root == "" {
		root = DefaultRoot
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, pkgerrors.Wrapf(engine.ErrNoBatteryFound, "cannot read %s: %v", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	sawBattery := false
	for _, name := range names {
		dir := filepath.Join(root, name)

		typ, err := readAttr(filepath.Join(dir, "type"))
		if err != nil || typ != "Battery" {
			continue
		}
		sawBattery = true

		for _, attr := range controlAttrs {
			p := filepath.Join(dir, attr)
			if _, err := os.Stat(p); err == nil {
				logrus.Debugf("using battery %s via %s", name, attr)
				return &Battery{name: name, dir: dir, controlPath: p}, nil
			}
		}
	}

	if sawBattery {
		return nil, engine.ErrUnsupportedHardware
	}
	return nil, engine.ErrNoBatteryFound
}

// Limit reads the charge limit currently configured in hardware.
func (b *Battery) Limit() (int, error) {
	s, err := readAttr(b.controlPath)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read charge limit of %s", b.name)
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "unexpected charge limit %q on %s", s, b.name)
	}

	return v, nil
}

// SetLimit writes a new charge limit to hardware. Values outside [50,100]
// are rejected before any write is attempted. Writes are synchronous and
// idempotent; a rejected write is reported immediately, never retried.
func (b *Battery) SetLimit(v int) error {
	if v < engine.MinLimit || v > engine.MaxLimit {
		return pkgerrors.Wrapf(engine.ErrInvalidRange, "got %d", v)
	}

	err := os.WriteFile(b.controlPath, []byte(strconv.Itoa(v)), 0644)
	if err != nil {
		return pkgerrors.Wrapf(engine.ErrHardwareWrite, "writing %s: %v", b.controlPath, err)
	}

	return nil
}

// Capacity reads the current charge percentage. Not every device exposes
// it, so callers should treat a failure as "unknown" where they can.
func (b *Battery) Capacity() (int, error) {
	s, err := readAttr(filepath.Join(b.dir, "capacity"))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read capacity of %s", b.name)
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "unexpected capacity %q on %s", s, b.name)
	}

	return v, nil
}

// Sysfs attributes are single lines with a trailing newline.
func readAttr(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
