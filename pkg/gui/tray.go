//go:build darwin || windows

package gui

import (
	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/powerstate"
	"github.com/charlie0129/powerstate/pkg/version"
)

// Run shows the power state in the menu bar (macOS) or the notification
// area (Windows) until the user quits. It must be called from the main
// thread.
func Run() error {
	logrus.WithField("version", version.Version).WithField("gitCommit", version.GitCommit).Info("powerstate tray")

	var guard *powerstate.Guard
	onReady := func() {
		systray.SetTitle("🔋 Loading...")
		systray.SetTooltip("powerstate")

		mSource := systray.AddMenuItem("Power Source: -", "Where power is drawn from")
		mSource.Disable()
		mTime := systray.AddMenuItem("Time Remaining: -", "Estimated time to full or empty")
		mTime.Disable()
		mSaving := systray.AddMenuItem("Power Saving: -", "Energy Saver or Low Power Mode")
		mSaving.Disable()

		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Quit powerstate")

		update := func(status powerstate.Status, err error) {
			if err != nil {
				logrus.Errorf("failed to query power state: %v", err)
				systray.SetTitle("🚫 Error")
				systray.SetTooltip(err.Error())
				return
			}
			title := trayTitle(status)
			systray.SetTitle(title)
			systray.SetTooltip(title)
			mSource.SetTitle(powerSourceText(status))
			mTime.SetTitle(timeRemainingText(status))
			mSaving.SetTitle(powerSavingText(status))
		}

		update(powerstate.GetCurrentPowerState())

		var err error
		guard, err = powerstate.Subscribe(update)
		if err != nil {
			logrus.Errorf("failed to subscribe to power state changes: %v", err)
		}

		go func() {
			<-mQuit.ClickedCh
			systray.Quit()
		}()
	}

	onExit := func() {
		if err := guard.Close(); err != nil {
			logrus.Errorf("failed to unsubscribe from power state changes: %v", err)
		}
		logrus.Info("powerstate tray exiting")
	}

	systray.Run(onReady, onExit)
	return nil
}
