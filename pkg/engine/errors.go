package engine

import "errors"

var (
	// ErrNoBatteryFound is returned when no battery device exists on this
	// system at all.
	ErrNoBatteryFound = errors.New("no battery found")

	// ErrUnsupportedHardware is returned when a battery exists but exposes
	// no recognized charge-control attribute.
	ErrUnsupportedHardware = errors.New("battery does not support charge control")

	// ErrInvalidRange is returned when a requested charge limit is outside
	// [50,100]. Nothing is written when this happens.
	ErrInvalidRange = errors.New("charge limit must be between 50 and 100")

	// ErrHardwareWrite is returned when the kernel rejects a write to a
	// control attribute. The change did not take effect.
	ErrHardwareWrite = errors.New("hardware write failed")

	// ErrPersistenceFailed is returned when a limit was applied to hardware
	// but could not be saved. The limit is live now but will not survive a
	// reboot.
	ErrPersistenceFailed = errors.New("failed to persist charge limit")

	// ErrCorruptConfig is returned when the config file exists but does not
	// hold a valid limit. Deliberately distinct from "not configured".
	ErrCorruptConfig = errors.New("corrupt config file")

	// ErrUnknownGovernor is returned when a requested governor is not in
	// the list advertised by the hardware.
	ErrUnknownGovernor = errors.New("unknown CPU governor")

	// ErrTaskRegistration is returned when the boot-time service could not
	// be registered or removed.
	ErrTaskRegistration = errors.New("failed to manage boot-time service")
)
