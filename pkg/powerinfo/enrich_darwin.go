//go:build darwin

package powerinfo

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/smc"
)

var newSMC = smc.New

// enrichPlatform reads temperature and cycle count from the SMC. Macs have a
// single internal battery, so only the first unit is enriched.
func enrichPlatform(index int, info *BatteryInfo) {
	if index != 0 {
		return
	}

	c := newSMC()
	if err := c.Open(); err != nil {
		logrus.Debugf("failed to open SMC connection: %v", err)
		return
	}
	defer func() {
		if err := c.Close(); err != nil {
			logrus.Debugf("failed to close SMC connection: %v", err)
		}
	}()

	if temp, err := c.GetBatteryTemperature(); err != nil {
		logrus.Debugf("failed to read battery temperature: %v", err)
	} else {
		info.Temperature = &temp
	}

	if cycles, err := c.GetBatteryCycleCount(); err != nil {
		logrus.Debugf("failed to read battery cycle count: %v", err)
	} else {
		info.CycleCount = &cycles
	}
}
