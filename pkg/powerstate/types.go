package powerstate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/charlie0129/powerstate/pkg/powerinfo"
)

// PowerState is where the machine currently draws power from.
type PowerState int

const (
	// Unknown means the OS did not report a recognizable power source.
	Unknown PowerState = iota
	// AC means the machine runs from mains power.
	AC
	// Battery means the machine runs from its battery.
	Battery
)

func (p PowerState) String() string {
	switch p {
	case AC:
		return "ac"
	case Battery:
		return "battery"
	default:
		return "unknown"
	}
}

func (p PowerState) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PowerState) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "ac":
		*p = AC
	case "battery":
		*p = Battery
	default:
		*p = Unknown
	}
	return nil
}

// TimeRemainingKind tells whether a remaining time counts towards full or empty.
type TimeRemainingKind int

const (
	// Charging means the duration is the time until the battery is full.
	Charging TimeRemainingKind = iota
	// Discharging means the duration is the time until the battery is empty.
	Discharging
)

func (k TimeRemainingKind) String() string {
	if k == Discharging {
		return "discharging"
	}
	return "charging"
}

// TimeRemaining is an estimated time until the battery is full or empty.
type TimeRemaining struct {
	Kind     TimeRemainingKind
	Duration time.Duration
}

type timeRemainingJSON struct {
	State   string `json:"state"`
	Seconds int64  `json:"seconds"`
}

func (t TimeRemaining) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeRemainingJSON{
		State:   t.Kind.String(),
		Seconds: int64(t.Duration / time.Second),
	})
}

func (t *TimeRemaining) UnmarshalJSON(b []byte) error {
	var v timeRemainingJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t.Kind = Charging
	if v.State == "discharging" {
		t.Kind = Discharging
	}
	t.Duration = time.Duration(v.Seconds) * time.Second
	return nil
}

func (t TimeRemaining) String() string {
	return fmt.Sprintf("%s (%s)", t.Duration, t.Kind)
}

// Status is a snapshot of the machine's power state. A new Status is
// produced by every query and is never modified afterwards.
type Status struct {
	PowerState PowerState `json:"powerState"`
	// EstimatedEnergyPercentage is nil when the OS does not report it.
	EstimatedEnergyPercentage *int `json:"estimatedEnergyPercentage"`
	// EstimatedTimeRemaining is nil while the OS is still estimating.
	EstimatedTimeRemaining *TimeRemaining `json:"estimatedTimeRemaining"`
	// PowerSavingMode is Energy Saver on Windows and Low Power Mode on macOS.
	PowerSavingMode bool                    `json:"powerSavingMode"`
	Batteries       []powerinfo.BatteryInfo `json:"batteries"`
}

// Percentage returns the estimated energy percentage, if known.
func (s Status) Percentage() (int, bool) {
	if s.EstimatedEnergyPercentage == nil {
		return 0, false
	}
	return *s.EstimatedEnergyPercentage, true
}

// TimeRemaining returns the estimated time remaining, if known.
func (s Status) TimeRemaining() (TimeRemaining, bool) {
	if s.EstimatedTimeRemaining == nil {
		return TimeRemaining{}, false
	}
	return *s.EstimatedTimeRemaining, true
}

// Equal reports whether two snapshots carry the same values.
func (s Status) Equal(other Status) bool {
	return reflect.DeepEqual(s, other)
}

// Callback receives the result of a fresh snapshot on every power event.
// It is called from a thread owned by the OS event sink.
type Callback func(Status, error)
