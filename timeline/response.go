package timeline

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Timeline is the nested payload of a metrics timeline response:
// metric name -> instance -> raw timestamp -> value.
// Values may arrive as JSON strings or numbers.
type Timeline map[string]map[string]map[string]json.Number

// RawResponse is what a Fetcher returns. A response without Timeline is a failure
// and Message carries the reason reported by the backend.
type RawResponse struct {
	StartTime int64    `json:"starttime,omitempty"`
	EndTime   int64    `json:"endtime,omitempty"`
	Component string   `json:"component,omitempty"`
	Timeline  Timeline `json:"timeline,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Usable reports whether the response carries a timeline
func (receiver *RawResponse) Usable() bool {
	return receiver != nil && receiver.Timeline != nil
}

// ParseSamples converts raw timestamp/value pairs to numbers
func ParseSamples(raw map[string]json.Number) (map[int64]float64, error) {
	samples := make(map[int64]float64, len(raw))
	for ts, value := range raw {
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, errors.Wrapf(err, "bad timestamp %q", ts)
		}
		v, err := value.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "bad value %q at %s", value, ts)
		}
		samples[t] = v
	}
	return samples, nil
}

func parseTimestamp(ts string) (int64, error) {
	if t, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return t, nil
	}
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Number formats a float the way the tracker encodes it
func Number(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// Stamp formats a timestamp key
func Stamp(t int64) string {
	return strconv.FormatInt(t, 10)
}
