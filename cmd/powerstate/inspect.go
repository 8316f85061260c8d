package main

import (
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powerstate/pkg/powerstate"
)

func NewInspectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "inspect FILE",
		GroupID: gAdvanced,
		Short:   "Normalize a saved dump of power source descriptions",
		Long: `Normalize a property list (XML or binary) of power source descriptions, as
printed by 'ioreg' or saved from IOPSCopyPowerSourcesInfo. Use - to read from stdin.

This uses the same rules as the live macOS query, so it works on any platform.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("json") {
				jsonOutput = conf.JSONOutput()
			}

			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to read %s", args[0])
			}

			descriptors, err := powerstate.DecodeDescriptors(data)
			if err != nil {
				return err
			}
			logrus.Debugf("decoded %d power source descriptions", len(descriptors))

			status := powerstate.NormalizeDescriptors(descriptors)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text (default from config)")

	return cmd
}
