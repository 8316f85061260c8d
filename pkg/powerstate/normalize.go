package powerstate

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/utils/ptr"
)

// NormalizeDescriptor maps a single power source description to the
// power-related fields of a Status. Batteries are left empty.
func NormalizeDescriptor(d Descriptor) Status {
	status := Status{}

	if state, ok := d.String(KeyPowerSourceState); ok {
		switch state {
		case ValueACPower:
			status.PowerState = AC
		case ValueBatteryPower:
			status.PowerState = Battery
		}
	}

	if capacity, ok := d.Int(KeyCurrentCapacity); ok && capacity >= 0 && capacity <= 100 {
		status.EstimatedEnergyPercentage = ptr.To(int(capacity))
	}

	// Both keys are in minutes, and -1 while the OS is still calculating.
	// When both are positive, time to empty wins.
	if minutes, ok := d.Int(KeyTimeToFullCharge); ok && validMinutes(minutes) {
		status.EstimatedTimeRemaining = &TimeRemaining{
			Kind:     Charging,
			Duration: time.Duration(minutes) * time.Minute,
		}
	}
	if minutes, ok := d.Int(KeyTimeToEmpty); ok && validMinutes(minutes) {
		status.EstimatedTimeRemaining = &TimeRemaining{
			Kind:     Discharging,
			Duration: time.Duration(minutes) * time.Minute,
		}
	}

	if lpm, ok := d.Int(KeyLowPowerMode); ok && lpm == 1 {
		status.PowerSavingMode = true
	}

	return status
}

// validMinutes reports whether m is a positive number of minutes that fits
// in a time.Duration.
func validMinutes(m int64) bool {
	return m > 0 && m <= math.MaxInt64/int64(time.Minute)
}

// NormalizeDescriptors picks one description out of everything the OS
// reported and normalizes it. The internal battery is preferred. Without one,
// the first description is used. Machines reporting no power source at all
// are always plugged in.
func NormalizeDescriptors(descriptors []Descriptor) Status {
	var first Descriptor
	for i, d := range descriptors {
		if d == nil {
			continue
		}
		if d.IsInternalBattery() {
			logrus.WithField("index", i).Trace("using internal battery power source")
			return NormalizeDescriptor(d)
		}
		if first == nil {
			first = d
		}
	}

	if first != nil {
		return NormalizeDescriptor(first)
	}

	logrus.Trace("no power source reported, assuming AC power")
	return Status{PowerState: AC}
}

// SystemPowerStatus mirrors the Windows SYSTEM_POWER_STATUS structure.
type SystemPowerStatus struct {
	ACLineStatus        uint8
	BatteryFlag         uint8
	BatteryLifePercent  uint8
	SystemStatusFlag    uint8
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

const (
	acLineOffline = 0
	acLineOnline  = 1

	batteryFlagNoSystemBattery = 128

	unknownLifeTime = ^uint32(0)
)

// NormalizeSystemPowerStatus maps a Windows power status record to the
// power-related fields of a Status. Batteries are left empty.
func NormalizeSystemPowerStatus(ps SystemPowerStatus) Status {
	status := Status{}

	switch ps.ACLineStatus {
	case acLineOffline:
		status.PowerState = Battery
	case acLineOnline:
		status.PowerState = AC
	default:
		if ps.BatteryFlag == batteryFlagNoSystemBattery {
			status.PowerState = AC
		}
	}

	// 255 means unknown.
	if ps.BatteryLifePercent <= 100 {
		status.EstimatedEnergyPercentage = ptr.To(int(ps.BatteryLifePercent))
	}

	// Both times are in seconds.
	if ps.BatteryFullLifeTime != unknownLifeTime {
		status.EstimatedTimeRemaining = &TimeRemaining{
			Kind:     Charging,
			Duration: time.Duration(ps.BatteryFullLifeTime) * time.Second,
		}
	} else if ps.BatteryLifeTime != unknownLifeTime {
		status.EstimatedTimeRemaining = &TimeRemaining{
			Kind:     Discharging,
			Duration: time.Duration(ps.BatteryLifeTime) * time.Second,
		}
	}

	status.PowerSavingMode = ps.SystemStatusFlag == 1

	return status
}
