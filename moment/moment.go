// Package moment defines the tagged-timestamp type the driver advances
// through: a point in time at which signals update, a measurement is taken,
// or both.
package moment

import "github.com/shapeless/lspgo/lsptime"

const (
	flagSignalUpdate uint32 = 0x1
	flagMeasurement  uint32 = 0x2
)

// Moment is a timestamp paired with a bitset of what must happen at that
// time. At least one flag is always set.
type Moment struct {
	timestamp Timestamp
	flags     uint32
}

// Timestamp is re-exported for callers that only import this package.
type Timestamp = lsptime.Timestamp

// SignalUpdate builds a moment that requests a signal-update pass.
func SignalUpdate(ts Timestamp) Moment {
	return Moment{timestamp: ts, flags: flagSignalUpdate}
}

// Measurement builds a moment that requests a measurement pass.
func Measurement(ts Timestamp) Moment {
	return Moment{timestamp: ts, flags: flagMeasurement}
}

// Timestamp returns the moment's time.
func (m Moment) Timestamp() Timestamp { return m.timestamp }

// ShouldUpdateSignals reports whether processors must run at this moment.
func (m Moment) ShouldUpdateSignals() bool { return m.flags&flagSignalUpdate != 0 }

// ShouldTakeMeasurements reports whether measurements must be read at this moment.
func (m Moment) ShouldTakeMeasurements() bool { return m.flags&flagMeasurement != 0 }

// Merge combines two moments sharing the same timestamp by OR-ing their
// flags. It reports false if the timestamps differ.
func (m Moment) Merge(other Moment) (Moment, bool) {
	if m.timestamp != other.timestamp {
		return Moment{}, false
	}
	return Moment{timestamp: m.timestamp, flags: m.flags | other.flags}, true
}
