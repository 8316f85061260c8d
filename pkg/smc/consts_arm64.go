//go:build darwin

package smc

import "encoding/binary"

// Battery SMC keys for arm64 (Apple Silicon)
const (
	BatteryTemperatureKey = "TB0T"
	BatteryCycleCountKey  = "B0CT"
)

// Integer keys are little-endian on Apple Silicon.
var intByteOrder binary.ByteOrder = binary.LittleEndian
