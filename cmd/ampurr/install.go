package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install the boot-time service (system-wide)",
		GroupID: gInstallation,
		Long: `Register a boot-time service that re-applies the saved charge limit on every boot.

Without it, the charge limit only lasts until the next reboot. You must run this command as root. Re-running it replaces an existing registration.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := newEngine().Install(); err != nil {
				if os.Geteuid() != 0 {
					logrus.Error("you must run this command as root")
				}
				return fmt.Errorf("failed to install: %w", err)
			}

			logrus.Info("boot-time service enabled, the charge limit will now persist across reboots")

			return nil
		},
	}
}

func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the boot-time service",
		GroupID: gInstallation,
		Long: `Remove the boot-time service and the saved configuration.

As a safety net the battery charge limit is reset to 100%, so removing ampurr never leaves your battery capped without you knowing.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := newEngine().Uninstall(); err != nil {
				if os.Geteuid() != 0 {
					logrus.Error("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall: %w", err)
			}

			logrus.Info("boot-time service removed, charge limit reset to 100%")

			return nil
		},
	}
}
