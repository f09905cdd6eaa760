package clock

import "time"

// Fields is one zone's view of the current wall time.
type Fields struct {
	Hour    int
	Minute  int
	Second  int
	Weekday time.Weekday
}

// SecondsSinceMidnight returns the elapsed seconds since midnight.
func (f Fields) SecondsSinceMidnight() int {
	return f.Hour*3600 + f.Minute*60 + f.Second
}

// Snapshot is a point-in-time read of local and UTC wall time. Time-dependent
// predicates take a fresh snapshot on every call; snapshots are never cached.
type Snapshot struct {
	Local Fields
	UTC   Fields
}

// Clock supplies wall-time snapshots.
type Clock interface {
	Now() Snapshot
}

// System reads the process wall clock.
type System struct{}

func (System) Now() Snapshot { return At(time.Now()) }

// Fixed always reports the same instant. Intended for tests.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() Snapshot { return At(f.Time) }

// At converts an instant into a Snapshot.
func At(t time.Time) Snapshot {
	return Snapshot{Local: fieldsOf(t), UTC: fieldsOf(t.UTC())}
}

func fieldsOf(t time.Time) Fields {
	return Fields{
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: t.Weekday(),
	}
}
