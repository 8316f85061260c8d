package powerinfo

import (
	"time"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	getAll        = battery.GetAll
	enrichBattery = enrichPlatform
)

// ListBatteries returns the telemetry of every battery unit, in the order the
// OS enumerates them. A unit that cannot be read fails the whole call. Units
// with some unsupported attributes are kept, with those attributes zeroed.
func ListBatteries() ([]BatteryInfo, error) {
	batteries, err := getAll()

	var unitErrs battery.Errors
	switch e := err.(type) {
	case nil:
	case battery.Errors:
		unitErrs = e
	case battery.ErrFatal:
		logrus.Errorf("failed to enumerate batteries: %v", e.Err)
		return nil, pkgerrors.Wrap(e, "failed to enumerate batteries")
	default:
		logrus.Errorf("failed to enumerate batteries: %v", err)
		return nil, pkgerrors.Wrap(err, "failed to enumerate batteries")
	}

	ret := make([]BatteryInfo, 0, len(batteries))
	for i, b := range batteries {
		if i < len(unitErrs) && unitErrs[i] != nil {
			if _, ok := unitErrs[i].(battery.ErrPartial); !ok {
				logrus.WithField("index", i).Warnf("failed to read battery: %v", unitErrs[i])
				return nil, pkgerrors.Wrapf(unitErrs[i], "failed to read battery %d", i)
			}
			logrus.WithField("index", i).Debugf("battery reports partial data: %v", unitErrs[i])
		}
		if b == nil {
			continue
		}

		info := convertBattery(b)
		enrichBattery(i, &info)
		ret = append(ret, info)
	}

	logrus.Tracef("ListBatteries returned %d batteries", len(ret))

	return ret, nil
}

// convertBattery maps a battery in mWh/mW to a BatteryInfo in Wh/W and fills
// the derived fields whose inputs are known.
func convertBattery(b *battery.Battery) BatteryInfo {
	info := BatteryInfo{
		Energy:           b.Current / 1000,
		EnergyFull:       b.Full / 1000,
		EnergyFullDesign: b.Design / 1000,
		EnergyRate:       b.ChargeRate / 1000,
		Voltage:          b.Voltage,
		State:            convertState(b.State),
	}
	if info.Voltage <= 0 {
		info.Voltage = b.DesignVoltage
	}

	if b.Full > 0 && b.Current >= 0 {
		// Some controllers report slightly more than the last full charge.
		info.StateOfCharge = min(b.Current/b.Full, 1)
	}
	if b.Design > 0 && b.Full > 0 {
		info.StateOfHealth = min(b.Full/b.Design, 1)
	}

	if b.ChargeRate > 0 {
		switch info.State {
		case Charging:
			if b.Full > b.Current {
				d := hours(b.Full-b.Current, b.ChargeRate)
				info.TimeToFull = &d
			}
		case Discharging:
			if b.Current > 0 {
				d := hours(b.Current, b.ChargeRate)
				info.TimeToEmpty = &d
			}
		}
	}

	return info
}

// hours converts energy over power, both in the same unit prefix, to a duration.
func hours(energy, power float64) time.Duration {
	return time.Duration(energy / power * float64(time.Hour)).Round(time.Second)
}

func convertState(s battery.State) BatteryState {
	switch s {
	case battery.Empty:
		return Empty
	case battery.Full:
		return Full
	case battery.Charging:
		return Charging
	case battery.Discharging:
		return Discharging
	default:
		return Unknown
	}
}
