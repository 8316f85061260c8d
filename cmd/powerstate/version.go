package main

import (
	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powerstate/pkg/client"
	"github.com/charlie0129/powerstate/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)

			if info, err := host.Info(); err != nil {
				logrus.Debugf("failed to get host info: %v", err)
			} else {
				cmd.Printf("platform: %s %s (%s, %s)\n", info.Platform, info.PlatformVersion, info.OS, info.KernelArch)
			}

			daemonVersion, err := client.NewClient(unixSocketPath).GetVersion()
			if err != nil {
				logrus.Debugf("failed to get daemon version: %v", err)
				return
			}
			cmd.Printf("daemon: %s\n", daemonVersion)
			if daemonVersion != version.Version {
				logrus.WithFields(logrus.Fields{
					"clientVersion": version.Version,
					"daemonVersion": daemonVersion,
				}).Warn("Version mismatch between client and daemon. Restart the daemon after upgrading.")
			}
		},
	}
}
