package main

import (
	"fmt"

	distatus "github.com/distatus/battery"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewBatteryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "battery",
		Short:   "Manage the battery charge limit",
		GroupID: gBattery,
	}

	cmd.AddCommand(
		newBatterySetCommand(),
		newBatteryGetCommand(),
		newBatteryStatusCommand(),
		newBatteryReapplyCommand(),
	)

	return cmd
}

func newBatterySetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [percentage]",
		Short: "Set a new charge limit (requires root)",
		Long: `Set a new charge limit.

This is a percentage from 50 to 100. Charging stops once the battery reaches it. Setting 100 disables the limit, which is the hardware default.

The limit is applied immediately and saved, so it is re-applied on every boot once ampurr is installed.`,
		RunE: func(_ *cobra.Command, args []string) error {
			limit, err := parseIntArg(args, "limit")
			if err != nil {
				return err
			}

			if err := newEngine().Set(limit); err != nil {
				return fmt.Errorf("failed to set charge limit: %w", err)
			}

			logrus.Infof("charge limit set to %d%% for the current session", limit)
			logrus.Infof("limit of %d%% saved and will be applied on the next boot", limit)

			return nil
		},
	}
}

func newBatteryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the currently configured limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, ok, err := newEngine().Get()
			if err != nil {
				return fmt.Errorf("failed to read charge limit: %w", err)
			}

			if !ok {
				cmd.Println("no charge limit configured")
				return nil
			}
			cmd.Printf("current charge limit: %d%%\n", v)

			return nil
		},
	}
}

func newBatteryStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current limit and battery capacity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newEngine().Status()
			if err != nil {
				return fmt.Errorf("failed to get battery status: %w", err)
			}

			cmd.Println(bold("Battery:") + " " + st.Battery)

			if st.HasLimit {
				text := fmt.Sprintf("%d%%", st.Limit)
				if st.Limit < 100 {
					text = green(text)
				}
				cmd.Println("  Charge limit:     " + text)
			} else {
				cmd.Println("  Charge limit:     " + yellow("not configured"))
			}

			if st.HasCapacity {
				cmd.Printf("  Current capacity: %d%%\n", st.Capacity)
			} else {
				cmd.Println("  Current capacity: unknown")
			}

			printBatteryDetails(cmd)

			return nil
		},
	}
}

// printBatteryDetails adds charging state and health from the OS battery
// statistics. Purely informational, so failures only get a debug log.
func printBatteryDetails(cmd *cobra.Command) {
	// GetAll can return partial data alongside an error; only a fully
	// empty result is worth skipping over.
	bats, err := distatus.GetAll()
	if len(bats) == 0 {
		logrus.WithError(err).Debug("could not read battery details")
		return
	}

	b := bats[0]
	cmd.Println("  State:            " + b.State.String())
	if b.Design > 0 {
		health := b.Full / b.Design * 100
		cmd.Printf("  Health:           %.0f%% of design capacity\n", health)
	}
}

func newBatteryReapplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reapply",
		Short: "Re-apply the saved charge limit to hardware",
		Long: `Re-apply the saved charge limit to hardware.

This is what the boot-time service runs on every boot. It is also useful to repair hardware state manually, e.g. after resuming from hibernation. If no limit has been configured, it does nothing.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newEngine().Reapply()
		},
	}
}
