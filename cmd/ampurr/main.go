package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ampurr/ampurr/pkg/config"
	"github.com/ampurr/ampurr/pkg/engine"
)

var (
	logLevel   = "info"
	configPath = config.DefaultPath
)

var (
	gBattery      = "Battery:"
	gCPU          = "CPU:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBattery,
		gCPU,
		gInstallation,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, engine.ErrNoBatteryFound):
		fmt.Fprintln(os.Stderr, "\nNo battery device was found on this system.")
	case errors.Is(err, engine.ErrUnsupportedHardware):
		fmt.Fprintln(os.Stderr, "\nYour battery does not expose a charge-control attribute.")
		fmt.Fprintln(os.Stderr, "A newer kernel or a firmware update may add support for your hardware.")
	case errors.Is(err, engine.ErrHardwareWrite),
		errors.Is(err, engine.ErrTaskRegistration),
		errors.Is(err, engine.ErrPersistenceFailed):
		if os.Geteuid() != 0 {
			fmt.Fprintln(os.Stderr, "\nThis operation needs root privileges. Try again with 'sudo'.")
		}
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ampurr",
		Short: "ampurr is a simple utility to manage your battery",
		Long: `ampurr is a simple utility to manage your battery.

It caps the battery charge threshold to slow battery aging and switches CPU power profiles. The chosen charge limit survives reboots once ampurr is installed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewBatteryCommand(),
		NewCPUCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
