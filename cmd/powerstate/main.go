package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/powerstate/pkg/client"
	"github.com/charlie0129/powerstate/pkg/config"
	"github.com/charlie0129/powerstate/pkg/gui"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

var (
	logLevel       = "info"
	unixSocketPath = ""
	configPath     = config.DefaultPath()

	conf config.Config
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func init() {
	// macOS delivers power events on the main run loop, which only the main
	// thread can run.
	runtime.LockOSThread()
}

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

// loadConfig reads the config file and lets it fill in flags the user did
// not set.
func loadConfig(cmd *cobra.Command) error {
	f, err := config.NewFile(configPath)
	if err != nil {
		return err
	}
	conf = f

	if !cmd.Flags().Changed("log-level") {
		logLevel = conf.LogLevel()
	}
	if !cmd.Flags().Changed("daemon-socket") {
		unixSocketPath = conf.SocketPath()
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: powerstate daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'powerstate daemon', or drop '--remote' to query the OS directly.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again as the user running the daemon")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with the '--always-allow-non-root-access' flag to grant permissions to your user")
	} else if errors.Is(err, powerstate.ErrUnsupportedPlatform) {
		fmt.Fprintf(os.Stderr, "\nError: power state is not available on %s\n", runtime.GOOS)
	} else if errors.Is(err, client.ErrUnsupportedPlatform) {
		fmt.Fprintln(os.Stderr, "\nError: the powerstate daemon runs on a platform without power state support")
	}
}

func main() {
	// powerstate does not need to use much.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "powerstate",
		Short: "powerstate reports where your computer draws its power from",
		Long: `powerstate reports where your computer draws its power from, how much energy
its batteries hold and whether a power saving mode is active. It can also watch
for changes, serve them to other programs, or show them in the menu bar.

Supported platforms: macOS, Windows.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "powerstate daemon unix socket path (default from config)")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewStatusCommand(),
		NewBatteriesCommand(),
		NewWatchCommand(),
		NewInspectCommand(),
		NewDaemonCommand(),
		NewVersionCommand(),
		gui.NewTrayCommand(gBasic),
	)

	return cmd
}
