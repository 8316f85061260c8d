//go:build windows

package powerinfo

import (
	"encoding/binary"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yusufpapurcu/wmi"
)

const wmiNamespace = `root\WMI`

type batteryStaticData struct {
	InstanceName    string
	ManufactureName string
	DeviceName      string
	SerialNumber    string
	Chemistry       uint32
}

type batteryCycleCount struct {
	InstanceName string
	CycleCount   uint32
}

// enrichPlatform fills vendor, model, serial number, chemistry and cycle
// count from the battery miniport WMI classes. Both classes list batteries
// in the same order as the battery device enumeration.
func enrichPlatform(index int, info *BatteryInfo) {
	var static []batteryStaticData
	q := "SELECT InstanceName, ManufactureName, DeviceName, SerialNumber, Chemistry FROM BatteryStaticData"
	if err := wmi.QueryNamespace(q, &static, wmiNamespace); err != nil {
		logrus.Debugf("wmi BatteryStaticData query failed: %v", err)
	} else if index < len(static) {
		s := static[index]
		info.Vendor = nonEmpty(s.ManufactureName)
		info.Model = nonEmpty(s.DeviceName)
		info.SerialNumber = nonEmpty(s.SerialNumber)
		info.Technology = ParseTechnology(chemistryCode(s.Chemistry))
	}

	var cycles []batteryCycleCount
	q = "SELECT InstanceName, CycleCount FROM BatteryCycleCount"
	if err := wmi.QueryNamespace(q, &cycles, wmiNamespace); err != nil {
		logrus.Debugf("wmi BatteryCycleCount query failed: %v", err)
	} else if index < len(cycles) && cycles[index].CycleCount > 0 {
		n := int(cycles[index].CycleCount)
		info.CycleCount = &n
	}
}

// chemistryCode unpacks the four ASCII characters packed into Chemistry.
func chemistryCode(v uint32) string {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return string(b)
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
