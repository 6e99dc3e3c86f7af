package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/constants"
)

// Percent is an optional percentage reading. Valid is false when the field was
// missing, null, or not a number.
type Percent struct {
	Value float64
	Valid bool
}

// NewPercent returns a valid Percent holding v.
func NewPercent(v float64) Percent {
	return Percent{Value: v, Valid: true}
}

// String renders the reading the way the dashboard shows it ("12.5 %"), or "" when absent.
func (p Percent) String() string {
	if !p.Valid {
		return ""
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64) + " %"
}

func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a number or a numeric string. Non-finite strings such as
// "NaN" or "Inf" leave the reading invalid.
func (p *Percent) UnmarshalJSON(data []byte) error {
	*p = Percent{}
	if string(data) == "null" {
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*p = NewPercent(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*p = NewPercent(v)
		}
	}
	return nil
}

// Timestamp is a point in time reported by a device or the server.
// Raw keeps the text as received so it can be displayed verbatim.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// NewTimestamp returns a Timestamp rendered in the fleet layout.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Raw: t.Format(constants.FleetTimeLayout)}
}

// IsZero reports whether no timestamp was received.
func (t Timestamp) IsZero() bool {
	return t.Raw == "" && t.Time.IsZero()
}

func (t Timestamp) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.UTC().Format(constants.FleetTimeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts RFC3339, the fleet layout, or unix seconds.
// Unparseable strings are kept in Raw with a zero Time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if string(data) == "null" {
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err == nil {
		sec := int64(seconds)
		nsec := int64((seconds - float64(sec)) * float64(time.Second))
		t.Time = time.Unix(sec, nsec).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	t.Raw = s

	for _, layout := range []string{time.RFC3339Nano, constants.FleetTimeLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			break
		}
	}
	return nil
}
