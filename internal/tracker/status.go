// Package tracker owns the job lifecycle: the status union, the manual
// transition graph and the service that applies user-driven changes.
package tracker

import "fmt"

// Status is either an automatic Bucket, which scoring may rewrite, or a
// Manual kind, which only a person or the outreach flow sets. The method
// set is sealed so no other package can add a third variant.
type Status interface {
	String() string
	isStatus()
}

// Bucket is an automatic category.
type Bucket string

// Manual is a status set outside scoring.
type Manual string

const (
	BucketNew     Bucket = "New"
	BucketHigh    Bucket = "High Priority"
	BucketGood    Bucket = "Good Match"
	BucketStretch Bucket = "Stretch"
)

const (
	Applied    Manual = "Applied"
	Interview  Manual = "Interview"
	Rejected   Manual = "Rejected"
	Accepted   Manual = "Accepted"
	Emailed    Manual = "Emailed"
	NotApplied Manual = "Not Applied"
)

func (b Bucket) String() string { return string(b) }
func (Bucket) isStatus()         {}

func (m Manual) String() string { return string(m) }
func (Manual) isStatus()         {}

// Buckets lists every automatic status.
var Buckets = []Bucket{BucketNew, BucketHigh, BucketGood, BucketStretch}

// Manuals lists every manual status.
var Manuals = []Manual{Applied, Interview, Rejected, Accepted, Emailed, NotApplied}

// ParseStatus converts a stored or user-supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, b := range Buckets {
		if s == string(b) {
			return b, nil
		}
	}
	for _, m := range Manuals {
		if s == string(m) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown job status %q", s)
}

// IsManual reports whether a stored status string must survive re-scoring.
// Only the Manual values are protected; anything else, including strings
// that do not parse, is recategorized.
func IsManual(s string) bool {
	st, _ := ParseStatus(s)
	_, ok := st.(Manual)
	return ok
}

// validTransitions is the graph for manual updates. Every automatic bucket
// shares the "automatic" row.
var validTransitions = map[Manual][]Status{
	Emailed:    {Applied, Interview, Rejected, NotApplied},
	Applied:    {Interview, Rejected},
	Interview:  {Accepted, Rejected},
	NotApplied: {Applied, BucketNew},
	Accepted:   {},
	Rejected:   {},
}

var fromAutomatic = []Status{Applied, Emailed, NotApplied, Rejected}

// IsTransitionAllowed reports whether a manual update may move a job from
// one status to another.
func IsTransitionAllowed(from, to Status) bool {
	if from == nil || to == nil || from == to {
		return false
	}

	var allowed []Status
	switch f := from.(type) {
	case Bucket:
		allowed = fromAutomatic
	case Manual:
		allowed = validTransitions[f]
	}

	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no further transition is possible.
func IsTerminal(s Status) bool {
	m, ok := s.(Manual)
	return ok && len(validTransitions[m]) == 0
}
