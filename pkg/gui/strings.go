package gui

import (
	"fmt"
	"time"

	"github.com/charlie0129/powerstate/pkg/powerstate"
)

// trayTitle is the short text shown next to the tray icon.
func trayTitle(status powerstate.Status) string {
	icon := "🔋"
	if status.PowerState == powerstate.AC {
		icon = "🔌"
	}
	if tr, ok := status.TimeRemaining(); ok && tr.Kind == powerstate.Charging {
		icon = "⚡️"
	}

	p, ok := status.Percentage()
	if !ok {
		return icon
	}
	return fmt.Sprintf("%s %d%%", icon, p)
}

func powerSourceText(status powerstate.Status) string {
	switch status.PowerState {
	case powerstate.AC:
		return "Power Source: AC Power"
	case powerstate.Battery:
		return "Power Source: Battery"
	default:
		return "Power Source: Unknown"
	}
}

func timeRemainingText(status powerstate.Status) string {
	tr, ok := status.TimeRemaining()
	if !ok {
		return "Time Remaining: Calculating..."
	}

	d := formatDuration(tr.Duration)
	if tr.Kind == powerstate.Charging {
		return fmt.Sprintf("Time to Full: %s", d)
	}
	return fmt.Sprintf("Time to Empty: %s", d)
}

func powerSavingText(status powerstate.Status) string {
	if status.PowerSavingMode {
		return "Power Saving: On"
	}
	return "Power Saving: Off"
}

// formatDuration renders d as "~1 hr 5 min", "~5 min" or "~30 sec".
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("~%d hr %d min", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("~%d min", minutes)
	default:
		return fmt.Sprintf("~%d sec", seconds)
	}
}
