package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/powerstate/pkg/client"
	"github.com/charlie0129/powerstate/pkg/events"
	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

// watcher prints snapshots as they arrive. Calls never overlap.
type watcher struct {
	w           io.Writer
	json        bool
	batteries   bool
	onlyChanges bool

	last    *powerstate.Status
	printed int
}

func (p *watcher) handle(status powerstate.Status, err error) {
	if err != nil {
		logrus.Errorf("failed to query power state: %v", err)
		return
	}

	if !p.batteries {
		status.Batteries = []powerinfo.BatteryInfo{}
	}
	if p.onlyChanges && p.last != nil && p.last.Equal(status) {
		logrus.Debug("power state unchanged")
		return
	}
	p.last = &status
	p.printed++

	if p.json {
		b, err := json.Marshal(status)
		if err != nil {
			logrus.Errorf("failed to marshal power state: %v", err)
			return
		}
		fmt.Fprintln(p.w, string(b))
		return
	}
	fmt.Fprintln(p.w, statusLine(time.Now(), status))
}

func NewWatchCommand() *cobra.Command {
	var o outputOptions
	var onlyChanges bool

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: gBasic,
		Short:   "Print the power state every time it changes",
		Long: `Print the power state now and every time the OS reports a power event, until interrupted.

With --json, every snapshot is printed as a single line of JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.resolve(cmd)
			if !cmd.Flags().Changed("only-changes") {
				onlyChanges = conf.OnlyChanges()
			}

			p := &watcher{
				w:           cmd.OutOrStdout(),
				json:        o.json,
				batteries:   o.batteries,
				onlyChanges: onlyChanges,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if o.remote {
				return watchRemote(ctx, p)
			}
			return watchLocal(ctx, p)
		},
	}

	o.addFlags(cmd, true)
	cmd.Flags().BoolVar(&onlyChanges, "only-changes", false, "skip events that do not change the snapshot (default from config)")

	return cmd
}

func watchLocal(ctx context.Context, p *watcher) error {
	status, err := powerstate.GetCurrentPowerState()
	if err != nil {
		return err
	}
	p.handle(status, nil)

	guard, err := powerstate.Subscribe(p.handle)
	if err != nil {
		return err
	}
	defer func() {
		if err := guard.Close(); err != nil {
			logrus.Errorf("failed to unsubscribe: %v", err)
		}
	}()

	powerstate.Run(ctx)
	return nil
}

func watchRemote(ctx context.Context, p *watcher) error {
	for ev := range client.NewClient(unixSocketPath).SubscribeEvents(ctx) {
		switch ev.Name {
		case events.PowerStatus:
			status, err := events.DecodeAs[powerstate.Status](ev)
			if err != nil {
				logrus.Errorf("failed to decode %s event: %v", ev.Name, err)
				continue
			}
			p.handle(status, nil)
		case events.PowerError:
			payload, err := events.DecodeAs[events.PowerErrorEvent](ev)
			if err != nil {
				logrus.Errorf("failed to decode %s event: %v", ev.Name, err)
				continue
			}
			logrus.Errorf("daemon failed to query power state: %s", payload.Error)
		}
	}

	if ctx.Err() == nil {
		return client.ErrDaemonNotRunning
	}
	return nil
}
