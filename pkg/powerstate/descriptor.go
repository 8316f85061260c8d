package powerstate

import (
	"math"

	pkgerrors "github.com/pkg/errors"
	"howett.net/plist"
)

// Keys and values of an IOKit power source description.
// See IOKit/ps/IOPSKeys.h.
const (
	KeyPowerSourceState = "Power Source State"
	KeyCurrentCapacity  = "Current Capacity"
	KeyMaxCapacity      = "Max Capacity"
	KeyTimeToFullCharge = "Time to Full Charge"
	KeyTimeToEmpty      = "Time to Empty"
	KeyLowPowerMode     = "LPM Active"
	KeyType             = "Type"
	KeyName             = "Name"
	KeyIsCharging       = "Is Charging"

	ValueACPower         = "AC Power"
	ValueBatteryPower    = "Battery Power"
	ValueInternalBattery = "InternalBattery"
)

// Descriptor is one power source description as reported by the OS: string
// keys mapped to loosely typed values. No key is guaranteed to be present or
// to hold the expected type.
type Descriptor map[string]any

// String returns the string stored under key.
func (d Descriptor) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer stored under key. Non-integer numbers, booleans
// and values that do not fit into an int64 are rejected.
func (d Descriptor) Int(key string) (int64, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	default:
		return 0, false
	}
}

// Bool returns the boolean stored under key.
func (d Descriptor) Bool(key string) (bool, bool) {
	v, ok := d[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// IsInternalBattery reports whether the descriptor is tagged as the internal battery.
func (d Descriptor) IsInternalBattery() bool {
	t, ok := d.String(KeyType)
	return ok && t == ValueInternalBattery
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// DecodeDescriptors decodes a property list (XML, binary or OpenStep) holding
// either an array of power source descriptions or a single description.
func DecodeDescriptors(data []byte) ([]Descriptor, error) {
	var list []map[string]any
	if _, err := plist.Unmarshal(data, &list); err == nil {
		ret := make([]Descriptor, 0, len(list))
		for _, m := range list {
			ret = append(ret, Descriptor(m))
		}
		return ret, nil
	}

	var single map[string]any
	if _, err := plist.Unmarshal(data, &single); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode power source descriptions")
	}
	return []Descriptor{single}, nil
}
