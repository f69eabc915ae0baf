package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCPUCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cpu",
		Short:   "Manage CPU power profiles (governors)",
		GroupID: gCPU,
	}

	cmd.AddCommand(
		newCPUSetCommand(),
		newCPUStatusCommand(),
		newCPUListCommand(),
	)

	return cmd
}

func newCPUSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [governor]",
		Short: "Set a new CPU governor (requires root)",
		Long: `Set a new CPU governor on all cores.

The governor must be one of the governors advertised by your hardware; see 'ampurr cpu list'. Unlike the battery charge limit, the governor choice does not survive a reboot.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("invalid number of arguments")
			}

			if err := newEngine().CPUSet(args[0]); err != nil {
				return fmt.Errorf("failed to set CPU governor: %w", err)
			}

			logrus.Infof("CPU governor set to %q on all cores", args[0])

			return nil
		},
	}
}

func newCPUStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current CPU governor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cur, err := newEngine().CPUStatus()
			if err != nil {
				return fmt.Errorf("failed to read CPU governor: %w", err)
			}

			cmd.Printf("current CPU governor: %s\n", cur)

			return nil
		},
	}
}

func newCPUListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available CPU governors for your system",
		RunE: func(cmd *cobra.Command, _ []string) error {
			govs, err := newEngine().CPUList()
			if err != nil {
				return fmt.Errorf("failed to list CPU governors: %w", err)
			}

			cmd.Println("available governors for your system:")
			cmd.Println("  " + strings.Join(govs, " "))

			return nil
		},
	}
}
