package powerinfo

import (
	"encoding/json"
	"strings"
	"time"
)

// BatteryState represents the charging state of the battery.
type BatteryState int

const (
	// Unknown means the controller did not report a state.
	Unknown BatteryState = iota
	// Empty indicates the battery is empty.
	Empty
	// Full indicates the battery is full.
	Full
	// Charging indicates the battery is charging.
	Charging
	// Discharging indicates the battery is discharging.
	Discharging
	// Idle indicates the battery is neither charging nor discharging while
	// plugged in, usually because of a charge limit.
	Idle
)

var batteryStateNames = map[BatteryState]string{
	Unknown:     "unknown",
	Empty:       "empty",
	Full:        "full",
	Charging:    "charging",
	Discharging: "discharging",
	Idle:        "idle",
}

func (s BatteryState) String() string {
	if name, ok := batteryStateNames[s]; ok {
		return name
	}
	return batteryStateNames[Unknown]
}

func (s BatteryState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BatteryState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*s = Unknown
	for state, n := range batteryStateNames {
		if n == name {
			*s = state
		}
	}
	return nil
}

// Technology is the battery chemistry.
type Technology int

const (
	TechnologyUnknown Technology = iota
	LithiumIon
	LeadAcid
	LithiumPolymer
	NickelMetalHydride
	NickelCadmium
	NickelZinc
	LithiumIronPhosphate
	RechargeableAlkalineManganese
)

var technologyNames = map[Technology]string{
	TechnologyUnknown:             "unknown",
	LithiumIon:                    "lithium-ion",
	LeadAcid:                      "lead-acid",
	LithiumPolymer:                "lithium-polymer",
	NickelMetalHydride:            "nickel-metal-hydride",
	NickelCadmium:                 "nickel-cadmium",
	NickelZinc:                    "nickel-zinc",
	LithiumIronPhosphate:          "lithium-iron-phosphate",
	RechargeableAlkalineManganese: "rechargeable-alkaline-manganese",
}

func (t Technology) String() string {
	if name, ok := technologyNames[t]; ok {
		return name
	}
	return technologyNames[TechnologyUnknown]
}

func (t Technology) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Technology) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*t = TechnologyUnknown
	for tech, n := range technologyNames {
		if n == name {
			*t = tech
		}
	}
	return nil
}

// ParseTechnology maps a chemistry code as reported by battery firmware,
// such as "LION" or "LiP", to a Technology.
func ParseTechnology(code string) Technology {
	switch strings.ToUpper(strings.TrimSpace(strings.Trim(code, "\x00"))) {
	case "LION", "LI-ION", "LI_ION":
		return LithiumIon
	case "PBAC", "PB":
		return LeadAcid
	case "LIP", "LIPO", "LI-POLY":
		return LithiumPolymer
	case "NIMH":
		return NickelMetalHydride
	case "NICD":
		return NickelCadmium
	case "NIZN":
		return NickelZinc
	case "LIFE", "LFP":
		return LithiumIronPhosphate
	case "RAM":
		return RechargeableAlkalineManganese
	default:
		return TechnologyUnknown
	}
}

// BatteryInfo is the telemetry of one battery unit.
// Units:
// - Energy, EnergyFull, EnergyFullDesign: Wh
// - EnergyRate: W, never negative, see State for the direction
// - Voltage: V
// - Temperature: degrees Celsius
// - StateOfCharge, StateOfHealth: fraction in 0..1
type BatteryInfo struct {
	StateOfCharge    float64      `json:"stateOfCharge"`
	Energy           float64      `json:"energy"`
	EnergyFull       float64      `json:"energyFull"`
	EnergyFullDesign float64      `json:"energyFullDesign"`
	EnergyRate       float64      `json:"energyRate"`
	Voltage          float64      `json:"voltage"`
	StateOfHealth    float64      `json:"stateOfHealth"`
	State            BatteryState `json:"state"`
	Technology       Technology   `json:"technology"`

	Temperature  *float64 `json:"temperature,omitempty"`
	CycleCount   *int     `json:"cycleCount,omitempty"`
	Vendor       *string  `json:"vendor,omitempty"`
	Model        *string  `json:"model,omitempty"`
	SerialNumber *string  `json:"serialNumber,omitempty"`

	TimeToFull  *time.Duration `json:"timeToFull,omitempty"`
	TimeToEmpty *time.Duration `json:"timeToEmpty,omitempty"`
}
