package query

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Series is the aligned timeline of one instance for one component metric.
// Timeline keys sit on the bucket grid of the request that produced it; a missing key means
// no data for that bucket. Series are never mutated after a node returns them.
type Series struct {
	ComponentName string
	MetricName    string
	Instance      string
	// Start and End record the requested range
	Start    int64
	End      int64
	Timeline map[int64]float64
}

// Timestamps returns the timeline keys in ascending order
func (s Series) Timestamps() []int64 {
	keys := maps.Keys(s.Timeline)
	slices.Sort(keys)
	return keys
}

// derive keeps the identity of s with a new range and timeline
func (s Series) derive(start, end int64, tl map[int64]float64) Series {
	return Series{
		ComponentName: s.ComponentName,
		MetricName:    s.MetricName,
		Instance:      s.Instance,
		Start:         start,
		End:           end,
		Timeline:      tl,
	}
}

// Clone returns a copy that shares no memory with s
func (s Series) Clone() Series {
	return s.derive(s.Start, s.End, maps.Clone(s.Timeline))
}
