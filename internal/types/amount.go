package types

// RawAmount is an amount as read from a source, before normalisation
type RawAmount struct {
	// OriginID identifies the source record, e.g. a row number
	OriginID string
	// Label is an optional human readable description carried to the report
	Label string
	// Value is the textual amount as it appeared in the source
	Value string
}

// Amount is a normalised amount in integer minor units (cents)
type Amount struct {
	OriginID string
	Label    string
	Value    int64
}

// Target is the value a combination must sum to, with an inclusive tolerance.
// Both are in minor units.
type Target struct {
	Value     int64
	Tolerance int64
}

// Low returns the lower bound of the accepted window
func (t Target) Low() int64 {
	return t.Value - t.Tolerance
}

// High returns the upper bound of the accepted window
func (t Target) High() int64 {
	return t.Value + t.Tolerance
}

// Contains reports whether sum lies within the tolerance window
func (t Target) Contains(sum int64) bool {
	return sum >= t.Low() && sum <= t.High()
}

// Negated returns the target with its sign flipped and the same tolerance
func (t Target) Negated() Target {
	return Target{Value: -t.Value, Tolerance: t.Tolerance}
}
