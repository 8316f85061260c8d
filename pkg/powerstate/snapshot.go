package powerstate

import (
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/powerinfo"
)

// backend is the set of native primitives one platform provides.
type backend interface {
	// query reads the instantaneous power status, without battery details.
	query() (Status, error)
	// newSink returns an unopened event sink for one subscription.
	newSink() (sink, error)
}

// unsupportedBackend is used on platforms without a power model.
type unsupportedBackend struct{}

func (unsupportedBackend) query() (Status, error) {
	return Status{}, ErrUnsupportedPlatform
}

func (unsupportedBackend) newSink() (sink, error) {
	return nil, ErrUnsupportedPlatform
}

// Source produces power state snapshots and subscriptions.
type Source struct {
	backend   backend
	batteries func() ([]powerinfo.BatteryInfo, error)
}

var defaultSource = &Source{
	backend:   nativeBackend,
	batteries: powerinfo.ListBatteries,
}

// GetCurrentPowerState returns a fresh snapshot of the machine's power state.
func GetCurrentPowerState() (Status, error) {
	return defaultSource.Current()
}

// Current returns a fresh snapshot. Failing to read battery details is not
// an error: the snapshot then carries no batteries.
func (s *Source) Current() (Status, error) {
	status, err := s.backend.query()
	if err != nil {
		return Status{}, err
	}

	batteries, err := s.batteries()
	if err != nil {
		logrus.Warnf("unable to access battery information: %v", err)
		batteries = nil
	}
	if batteries == nil {
		batteries = []powerinfo.BatteryInfo{}
	}
	status.Batteries = batteries

	logrus.WithFields(logrus.Fields{
		"powerState":      status.PowerState,
		"powerSavingMode": status.PowerSavingMode,
		"batteries":       len(status.Batteries),
	}).Trace("power state queried")

	return status, nil
}
