package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStatus(w io.Writer, status powerstate.Status) {
	fmt.Fprintln(w, bold("Power status:"))
	fmt.Fprintf(w, "  Power source: %s\n", powerSourceText(status.PowerState))

	if p, ok := status.Percentage(); ok {
		fmt.Fprintf(w, "  Energy: %s\n", bold("%d%%", p))
	} else {
		fmt.Fprintln(w, "  Energy: unknown")
	}

	fmt.Fprintf(w, "  %s\n", timeRemainingText(status))
	fmt.Fprintf(w, "  Power saving mode: %s\n", bool2Text(status.PowerSavingMode))

	if len(status.Batteries) > 0 {
		fmt.Fprintln(w)
		printBatteries(w, status.Batteries)
	}
}

func printBatteries(w io.Writer, batteries []powerinfo.BatteryInfo) {
	if len(batteries) == 0 {
		fmt.Fprintln(w, "No batteries found.")
		return
	}

	fmt.Fprintln(w, bold("Batteries:"))
	for i, b := range batteries {
		fmt.Fprintf(w, "  Battery %d: %s\n", i, bold("%s", b.State))
		fmt.Fprintf(w, "    Charge: %.1f%% (%.1f / %.1f Wh)\n", b.StateOfCharge*100, b.Energy, b.EnergyFull)
		fmt.Fprintf(w, "    Health: %.1f%% (design capacity %.1f Wh)\n", b.StateOfHealth*100, b.EnergyFullDesign)
		fmt.Fprintf(w, "    Rate: %.2f W, Voltage: %.2f V\n", b.EnergyRate, b.Voltage)
		if b.TimeToFull != nil {
			fmt.Fprintf(w, "    Time to full: %s\n", formatDuration(*b.TimeToFull))
		}
		if b.TimeToEmpty != nil {
			fmt.Fprintf(w, "    Time to empty: %s\n", formatDuration(*b.TimeToEmpty))
		}
		if b.Technology != powerinfo.TechnologyUnknown {
			fmt.Fprintf(w, "    Technology: %s\n", b.Technology)
		}
		if b.CycleCount != nil {
			fmt.Fprintf(w, "    Cycle count: %d\n", *b.CycleCount)
		}
		if b.Temperature != nil {
			fmt.Fprintf(w, "    Temperature: %.1f°C\n", *b.Temperature)
		}
		for _, f := range []struct {
			name  string
			value *string
		}{
			{"Vendor", b.Vendor},
			{"Model", b.Model},
			{"Serial number", b.SerialNumber},
		} {
			if f.value != nil {
				fmt.Fprintf(w, "    %s: %s\n", f.name, *f.value)
			}
		}
	}
}

// statusLine is the one-line form used by watch.
func statusLine(now time.Time, status powerstate.Status) string {
	energy := "?%"
	if p, ok := status.Percentage(); ok {
		energy = fmt.Sprintf("%d%%", p)
	}

	line := fmt.Sprintf("%s  %-8s %4s  %s", now.Format(time.TimeOnly), status.PowerState, energy, timeRemainingText(status))
	if status.PowerSavingMode {
		line += "  (power saving)"
	}
	return line
}

func powerSourceText(p powerstate.PowerState) string {
	switch p {
	case powerstate.AC:
		return "AC Power"
	case powerstate.Battery:
		return "Battery Power"
	default:
		return "Unknown"
	}
}

func timeRemainingText(status powerstate.Status) string {
	tr, ok := status.TimeRemaining()
	if !ok {
		return "Time remaining: calculating"
	}
	if tr.Kind == powerstate.Charging {
		return "Time to full: " + formatDuration(tr.Duration)
	}
	return "Time to empty: " + formatDuration(tr.Duration)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Minute).String()
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
