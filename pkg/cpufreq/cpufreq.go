// Package cpufreq reads and switches CPU frequency scaling governors.
package cpufreq

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ampurr/ampurr/pkg/engine"
)

// DefaultRoot is where the kernel exposes per-CPU directories.
const DefaultRoot = "/sys/devices/system/cpu"

var coreDirRe = regexp.MustCompile(`^cpu[0-9]+$`)

// Controller switches scaling governors. The governor choice is applied to
// every core and does not survive a reboot.
type Controller struct {
	// Root overrides DefaultRoot, mainly for tests.
	Root string
}

func (c *Controller) root() string {
	if c.Root != "" {
		return c.Root
	}
	return DefaultRoot
}

// Governors returns the governors advertised by the hardware, in the order
// the kernel lists them. The list is read from cpu0; cores are assumed to
// advertise the same set.
func (c *Controller) Governors() ([]string, error) {
	p := filepath.Join(c.root(), "cpu0", "cpufreq", "scaling_available_governors")
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read available governors")
	}
	return strings.Fields(string(b)), nil
}

// Current returns the active governor, read from cpu0.
func (c *Controller) Current() (string, error) {
	p := filepath.Join(c.root(), "cpu0", "cpufreq", "scaling_governor")
	b, err := os.ReadFile(p)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to read current governor")
	}
	return strings.TrimSpace(string(b)), nil
}

// SetGovernor switches the scaling governor on all cores. The name must
// exactly match one of the advertised governors; there is no fuzzy
// matching. Cores without a cpufreq directory are skipped.
func (c *Controller) SetGovernor(name string) error {
	available, err := c.Governors()
	if err != nil {
		return err
	}

	known := false
	for _, g := range available {
		if g == name {
			known = true
			break
		}
	}
	if !known {
		return pkgerrors.Wrapf(engine.ErrUnknownGovernor,
			"%q is not available on this system (available: %s)", name, strings.Join(available, " "))
	}

	cores, err := c.cores()
	if err != nil {
		return err
	}

	for _, core := range cores {
		p := filepath.Join(c.root(), core, "cpufreq", "scaling_governor")
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			return pkgerrors.Wrapf(engine.ErrHardwareWrite, "writing %s: %v", p, err)
		}
		logrus.Debugf("governor %s set on %s", name, core)
	}

	return nil
}

func (c *Controller) cores() ([]string, error) {
	entries, err := os.ReadDir(c.root())
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list CPU cores in %s", c.root())
	}

	var cores []string
	for _, e := range entries {
		if coreDirRe.MatchString(e.Name()) {
			cores = append(cores, e.Name())
		}
	}
	return cores, nil
}
