//go:build darwin

package smc

import "encoding/binary"

// Battery SMC keys for amd64 (Intel 64).
const (
	BatteryTemperatureKey = "TB0T" // Not verified yet.
	BatteryCycleCountKey  = "B0CT" // Not verified yet.
)

var intByteOrder binary.ByteOrder = binary.BigEndian
