// Package tz turns client supplied class times into canonical UTC instants
// and renders stored instants back into a display zone.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultZone is used for start times that carry no offset.
const DefaultZone = "Asia/Kolkata"

var (
	ErrInvalidFormat = errors.New("invalid datetime format")
	ErrUnknownZone   = errors.New("unknown timezone")
	ErrInvalidTime   = errors.New("time must be in the future")
)

var offsetLessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

var zoneAliases = map[string]string{
	"IST": "Asia/Kolkata",
	"UTC": "UTC",
	"Z":   "UTC",
}

type Normalizer struct {
	def *time.Location
	now func() time.Time
}

// NewNormalizer builds a Normalizer with the given default zone. A nil now
// falls back to time.Now.
func NewNormalizer(defaultZone string, now func() time.Time) (*Normalizer, error) {
	if strings.TrimSpace(defaultZone) == "" {
		defaultZone = DefaultZone
	}
	loc, err := LoadZone(defaultZone)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{def: loc, now: now}, nil
}

func (n *Normalizer) Now() time.Time {
	return n.now().UTC()
}

func (n *Normalizer) DefaultLocation() *time.Location {
	return n.def
}

// Parse converts raw into a UTC instant. Inputs without an offset are read in
// zone, or in the default zone when zone is empty.
func (n *Normalizer) Parse(raw, zone string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidFormat
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}

	loc := n.def
	if strings.TrimSpace(zone) != "" {
		var err error
		loc, err = LoadZone(zone)
		if err != nil {
			return time.Time{}, err
		}
	}

	for _, layout := range offsetLessLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
}

// Normalize parses raw and requires the result to be strictly after now.
func (n *Normalizer) Normalize(raw, zone string) (time.Time, error) {
	t, err := n.Parse(raw, zone)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(n.Now()) {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// Render formats t as RFC 3339 in zone, UTC when zone is empty.
func Render(t time.Time, zone string) (string, error) {
	if strings.TrimSpace(zone) == "" {
		return t.UTC().Format(time.RFC3339), nil
	}
	loc, err := LoadZone(zone)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(time.RFC3339), nil
}

// LoadZone resolves an IANA zone name or one of the short aliases.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if alias, ok := zoneAliases[strings.ToUpper(name)]; ok {
		name = alias
	}
	loc, err := time.LoadLocation(name)
	if err != nil || name == "" || strings.EqualFold(name, "Local") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	return loc, nil
}
