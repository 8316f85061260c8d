//go:build darwin

package smc

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GetBatteryTemperature returns the battery temperature in degrees Celsius.
func (c *AppleSMC) GetBatteryTemperature() (float64, error) {
	logrus.Tracef("GetBatteryTemperature called")

	v, err := c.Read(BatteryTemperatureKey)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read battery temperature")
	}

	var ret float64
	switch len(v.Bytes) {
	case 4:
		// flt, little-endian float32
		ret = float64(math.Float32frombits(binary.LittleEndian.Uint32(v.Bytes)))
	case 2:
		// sp78, big-endian signed fixed point with 8 fraction bits
		ret = float64(int16(binary.BigEndian.Uint16(v.Bytes))) / 256
	default:
		return 0, errors.Errorf("incorrect data length %d for %s", len(v.Bytes), BatteryTemperatureKey)
	}

	logrus.Tracef("GetBatteryTemperature returned %.2f", ret)
	return ret, nil
}

// GetBatteryCycleCount returns the battery cycle count.
func (c *AppleSMC) GetBatteryCycleCount() (int, error) {
	logrus.Tracef("GetBatteryCycleCount called")

	v, err := c.Read(BatteryCycleCountKey)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read battery cycle count")
	}

	if len(v.Bytes) != 2 {
		return 0, errors.Errorf("incorrect data length %d!=2", len(v.Bytes))
	}

	return int(intByteOrder.Uint16(v.Bytes)), nil
}
