package powerstate

import (
	"math"
	"testing"
	"time"

	"github.com/charlie0129/powerstate/pkg/utils/ptr"
)

func TestNormalizeDescriptor_Percentage(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *int
	}{
		{name: "zero", value: 0, want: ptr.To(0)},
		{name: "in range", value: int64(87), want: ptr.To(87)},
		{name: "full", value: uint8(100), want: ptr.To(100)},
		{name: "above range is not clamped", value: 101, want: nil},
		{name: "negative", value: -1, want: nil},
		{name: "float", value: 50.0, want: nil},
		{name: "string", value: "50", want: nil},
		{name: "bool", value: true, want: nil},
		{name: "huge unsigned", value: ^uint64(0), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDescriptor(Descriptor{KeyCurrentCapacity: tt.value}).EstimatedEnergyPercentage
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("EstimatedEnergyPercentage = %v, want %v", got, tt.want)
			case *got != *tt.want:
				t.Errorf("EstimatedEnergyPercentage = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func TestNormalizeDescriptor_PowerState(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  PowerState
	}{
		{name: "ac", value: ValueACPower, want: AC},
		{name: "battery", value: ValueBatteryPower, want: Battery},
		{name: "unrecognized", value: "Off Line", want: Unknown},
		{name: "wrong type", value: 1, want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDescriptor(Descriptor{KeyPowerSourceState: tt.value}).PowerState
			if got != tt.want {
				t.Errorf("PowerState = %v, want %v", got, tt.want)
			}
		})
	}

	if got := NormalizeDescriptor(Descriptor{}).PowerState; got != Unknown {
		t.Errorf("PowerState of empty descriptor = %v, want %v", got, Unknown)
	}
}

func TestNormalizeDescriptor_TimeRemaining(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want *TimeRemaining
	}{
		{
			name: "charging",
			d:    Descriptor{KeyTimeToFullCharge: 30},
			want: &TimeRemaining{Kind: Charging, Duration: 30 * time.Minute},
		},
		{
			name: "discharging",
			d:    Descriptor{KeyTimeToEmpty: 55},
			want: &TimeRemaining{Kind: Discharging, Duration: 55 * time.Minute},
		},
		{
			name: "time to empty wins",
			d:    Descriptor{KeyTimeToFullCharge: 30, KeyTimeToEmpty: 55},
			want: &TimeRemaining{Kind: Discharging, Duration: 55 * time.Minute},
		},
		{
			name: "still calculating",
			d:    Descriptor{KeyTimeToFullCharge: -1, KeyTimeToEmpty: -1},
			want: nil,
		},
		{
			name: "zero is ignored",
			d:    Descriptor{KeyTimeToFullCharge: 20, KeyTimeToEmpty: 0},
			want: &TimeRemaining{Kind: Charging, Duration: 20 * time.Minute},
		},
		{
			name: "absent",
			d:    Descriptor{},
			want: nil,
		},
		{
			name: "too large to represent",
			d:    Descriptor{KeyTimeToEmpty: int64(1) << 58},
			want: nil,
		},
		{
			name: "too large falls back to the other key",
			d:    Descriptor{KeyTimeToFullCharge: 30, KeyTimeToEmpty: int64(1) << 40},
			want: &TimeRemaining{Kind: Charging, Duration: 30 * time.Minute},
		},
		{
			name: "largest representable",
			d:    Descriptor{KeyTimeToEmpty: int64(math.MaxInt64 / int64(time.Minute))},
			want: &TimeRemaining{Kind: Discharging, Duration: time.Duration(math.MaxInt64/int64(time.Minute)) * time.Minute},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDescriptor(tt.d).EstimatedTimeRemaining
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("EstimatedTimeRemaining = %v, want %v", got, tt.want)
			case *got != *tt.want:
				t.Errorf("EstimatedTimeRemaining = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestNormalizeDescriptor_PowerSavingMode(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "active", value: 1, want: true},
		{name: "inactive", value: 0, want: false},
		{name: "other integer", value: 2, want: false},
		{name: "bool is not an integer", value: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDescriptor(Descriptor{KeyLowPowerMode: tt.value}).PowerSavingMode; got != tt.want {
				t.Errorf("PowerSavingMode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDescriptor_EndToEnd(t *testing.T) {
	got := NormalizeDescriptor(Descriptor{
		KeyPowerSourceState: ValueBatteryPower,
		KeyCurrentCapacity:  42,
		KeyTimeToEmpty:      55,
		KeyLowPowerMode:     1,
	})
	want := Status{
		PowerState:                Battery,
		EstimatedEnergyPercentage: ptr.To(42),
		EstimatedTimeRemaining:    &TimeRemaining{Kind: Discharging, Duration: 3300 * time.Second},
		PowerSavingMode:           true,
	}
	if !got.Equal(want) {
		t.Errorf("NormalizeDescriptor() = %+v, want %+v", got, want)
	}

	got = NormalizeDescriptor(Descriptor{
		KeyPowerSourceState: ValueACPower,
		KeyCurrentCapacity:  40,
		KeyTimeToFullCharge: 30,
		KeyTimeToEmpty:      -1,
	})
	want = Status{
		PowerState:                AC,
		EstimatedEnergyPercentage: ptr.To(40),
		EstimatedTimeRemaining:    &TimeRemaining{Kind: Charging, Duration: 1800 * time.Second},
	}
	if !got.Equal(want) {
		t.Errorf("NormalizeDescriptor() = %+v, want %+v", got, want)
	}
}

func TestNormalizeDescriptors(t *testing.T) {
	ups := Descriptor{KeyType: "UPS", KeyPowerSourceState: ValueACPower, KeyCurrentCapacity: 10}
	internal := Descriptor{KeyType: ValueInternalBattery, KeyPowerSourceState: ValueBatteryPower, KeyCurrentCapacity: 60}
	second := Descriptor{KeyType: ValueInternalBattery, KeyPowerSourceState: ValueACPower, KeyCurrentCapacity: 99}

	tests := []struct {
		name        string
		descriptors []Descriptor
		wantState   PowerState
		wantPercent int
		wantKnown   bool
	}{
		{name: "no sources means ac", descriptors: nil, wantState: AC},
		{name: "only nil sources", descriptors: []Descriptor{nil, nil}, wantState: AC},
		{name: "internal battery first", descriptors: []Descriptor{internal, ups}, wantState: Battery, wantPercent: 60, wantKnown: true},
		{name: "internal battery last", descriptors: []Descriptor{ups, internal}, wantState: Battery, wantPercent: 60, wantKnown: true},
		{name: "first internal battery wins", descriptors: []Descriptor{ups, internal, second}, wantState: Battery, wantPercent: 60, wantKnown: true},
		{name: "falls back to first source", descriptors: []Descriptor{nil, ups}, wantState: AC, wantPercent: 10, wantKnown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDescriptors(tt.descriptors)
			if got.PowerState != tt.wantState {
				t.Errorf("PowerState = %v, want %v", got.PowerState, tt.wantState)
			}
			p, ok := got.Percentage()
			if ok != tt.wantKnown || p != tt.wantPercent {
				t.Errorf("Percentage() = %d, %v, want %d, %v", p, ok, tt.wantPercent, tt.wantKnown)
			}
		})
	}
}

func TestNormalizeSystemPowerStatus(t *testing.T) {
	const unknown = ^uint32(0)

	tests := []struct {
		name string
		ps   SystemPowerStatus
		want Status
	}{
		{
			name: "plugged in while estimating",
			ps: SystemPowerStatus{
				ACLineStatus:        1,
				BatteryLifePercent:  87,
				BatteryFullLifeTime: unknown,
				BatteryLifeTime:     unknown,
				SystemStatusFlag:    0,
			},
			want: Status{
				PowerState:                AC,
				EstimatedEnergyPercentage: ptr.To(87),
			},
		},
		{
			name: "on battery",
			ps: SystemPowerStatus{
				ACLineStatus:        0,
				BatteryLifePercent:  87,
				BatteryLifeTime:     3300,
				BatteryFullLifeTime: unknown,
				SystemStatusFlag:    1,
			},
			want: Status{
				PowerState:                Battery,
				EstimatedEnergyPercentage: ptr.To(87),
				EstimatedTimeRemaining:    &TimeRemaining{Kind: Discharging, Duration: 3300 * time.Second},
				PowerSavingMode:           true,
			},
		},
		{
			name: "charging",
			ps: SystemPowerStatus{
				ACLineStatus:        1,
				BatteryLifePercent:  40,
				BatteryLifeTime:     unknown,
				BatteryFullLifeTime: 1800,
			},
			want: Status{
				PowerState:                AC,
				EstimatedEnergyPercentage: ptr.To(40),
				EstimatedTimeRemaining:    &TimeRemaining{Kind: Charging, Duration: 1800 * time.Second},
			},
		},
		{
			name: "desktop without battery",
			ps: SystemPowerStatus{
				ACLineStatus:        255,
				BatteryFlag:         128,
				BatteryLifePercent:  255,
				BatteryLifeTime:     unknown,
				BatteryFullLifeTime: unknown,
			},
			want: Status{PowerState: AC},
		},
		{
			name: "unknown line status",
			ps: SystemPowerStatus{
				ACLineStatus:        255,
				BatteryLifePercent:  255,
				BatteryLifeTime:     unknown,
				BatteryFullLifeTime: unknown,
			},
			want: Status{PowerState: Unknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSystemPowerStatus(tt.ps); !got.Equal(tt.want) {
				t.Errorf("NormalizeSystemPowerStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

const descriptorsXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>Current Capacity</key>
		<integer>87</integer>
		<key>Is Charging</key>
		<false/>
		<key>LPM Active</key>
		<integer>0</integer>
		<key>Name</key>
		<string>InternalBattery-0</string>
		<key>Power Source State</key>
		<string>Battery Power</string>
		<key>Time to Empty</key>
		<integer>55</integer>
		<key>Time to Full Charge</key>
		<integer>0</integer>
		<key>Type</key>
		<string>InternalBattery</string>
	</dict>
</array>
</plist>
`

func TestDecodeDescriptors(t *testing.T) {
	descriptors, err := DecodeDescriptors([]byte(descriptorsXML))
	if err != nil {
		t.Fatalf("DecodeDescriptors() error = %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("len(descriptors) = %d, want 1", len(descriptors))
	}

	d := descriptors[0]
	if !d.IsInternalBattery() {
		t.Errorf("IsInternalBattery() = false, want true")
	}
	if charging, ok := d.Bool(KeyIsCharging); !ok || charging {
		t.Errorf("Bool(%q) = %v, %v, want false, true", KeyIsCharging, charging, ok)
	}

	got := NormalizeDescriptors(descriptors)
	want := Status{
		PowerState:                Battery,
		EstimatedEnergyPercentage: ptr.To(87),
		EstimatedTimeRemaining:    &TimeRemaining{Kind: Discharging, Duration: 55 * time.Minute},
	}
	if !got.Equal(want) {
		t.Errorf("NormalizeDescriptors() = %+v, want %+v", got, want)
	}
}

func TestDecodeDescriptors_SingleDict(t *testing.T) {
	data := []byte(`<plist version="1.0"><dict><key>Power Source State</key><string>AC Power</string></dict></plist>`)
	descriptors, err := DecodeDescriptors(data)
	if err != nil {
		t.Fatalf("DecodeDescriptors() error = %v", err)
	}
	if len(descriptors) != 1 || NormalizeDescriptor(descriptors[0]).PowerState != AC {
		t.Errorf("DecodeDescriptors() = %v, want a single AC descriptor", descriptors)
	}
}

func TestDecodeDescriptors_Invalid(t *testing.T) {
	if _, err := DecodeDescriptors([]byte("not a plist <<<")); err == nil {
		t.Errorf("DecodeDescriptors() error = nil, want an error")
	}
}
