package main

import (
	"github.com/spf13/cobra"

	"github.com/charlie0129/powerstate/pkg/client"
	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

// outputOptions are the flags shared by commands that print power data.
type outputOptions struct {
	json      bool
	remote    bool
	batteries bool
}

func (o *outputOptions) addFlags(cmd *cobra.Command, withBatteries bool) {
	f := cmd.Flags()
	f.BoolVar(&o.json, "json", false, "print JSON instead of text (default from config)")
	f.BoolVar(&o.remote, "remote", false, "ask the powerstate daemon instead of the OS")
	if withBatteries {
		f.BoolVar(&o.batteries, "batteries", true, "include battery details (default from config)")
	}
}

// resolve fills options the user did not set from the config.
func (o *outputOptions) resolve(cmd *cobra.Command) {
	if !cmd.Flags().Changed("json") {
		o.json = conf.JSONOutput()
	}
	if cmd.Flags().Lookup("batteries") != nil && !cmd.Flags().Changed("batteries") {
		o.batteries = conf.IncludeBatteries()
	}
}

func fetchStatus(o outputOptions) (powerstate.Status, error) {
	if o.remote {
		status, err := client.NewClient(unixSocketPath).GetStatus(o.batteries)
		if err != nil {
			return powerstate.Status{}, err
		}
		return *status, nil
	}

	status, err := powerstate.GetCurrentPowerState()
	if err != nil {
		return powerstate.Status{}, err
	}
	if !o.batteries {
		status.Batteries = []powerinfo.BatteryInfo{}
	}
	return status, nil
}

func NewStatusCommand() *cobra.Command {
	var o outputOptions

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current power state",
		Long:    `Get the power source, energy percentage, time remaining, power saving mode and battery details.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.resolve(cmd)

			status, err := fetchStatus(o)
			if err != nil {
				return err
			}

			if o.json {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	o.addFlags(cmd, true)

	return cmd
}

func NewBatteriesCommand() *cobra.Command {
	var o outputOptions

	cmd := &cobra.Command{
		Use:     "batteries",
		GroupID: gBasic,
		Short:   "Get battery telemetry",
		Long:    `Get energy, capacity, health, rate, voltage and other details of every battery.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.resolve(cmd)

			var batteries []powerinfo.BatteryInfo
			var err error
			if o.remote {
				batteries, err = client.NewClient(unixSocketPath).GetBatteries()
			} else {
				batteries, err = powerinfo.ListBatteries()
			}
			if err != nil {
				return err
			}

			if o.json {
				return printJSON(cmd.OutOrStdout(), batteries)
			}
			printBatteries(cmd.OutOrStdout(), batteries)
			return nil
		},
	}

	o.addFlags(cmd, false)

	return cmd
}
