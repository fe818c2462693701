// Package tz maps between absolute time and civil time under the rules of
// a time zone.
//
// A TimeZone is an immutable table of offset transitions, typically decoded
// from a TZif file. Lookup answers "what civil time is it there" for an
// absolute instant and is total; LookupCivil answers the reverse question
// and reports whether the civil time is unique, was skipped by a forward
// transition, or is repeated by a backward one.
//
// Absolute instants are time.Time values. Only the instant they denote is
// used; their Location is ignored, and all returned instants are in UTC.
package tz

import (
	"fmt"
	"math"

	"github.com/tzmath/go-civil/internal/calmath"
	"github.com/tzmath/go-civil/internal/posixtz"
	"github.com/tzmath/go-civil/tzif"
)

// Transition is one entry of a zone's transition table: from When on, local
// time is UTC plus Offset seconds. The first entry of a table extends back
// to the beginning of time regardless of its When.
type Transition struct {
	When   int64 // Unix seconds
	Offset int   // seconds east of UTC
	DST    bool
	Abbr   string
}

// TimeZone is a time zone. The zero value and the nil pointer behave as
// UTC. TimeZones are immutable and safe for concurrent use.
type TimeZone struct {
	name string
	tab  []Transition
}

var utcTable = []Transition{{When: math.MinInt64, Offset: 0, Abbr: "UTC"}}

var utcZone = &TimeZone{name: "UTC"}

// UTC returns the UTC time zone.
func UTC() *TimeZone { return utcZone }

func (z *TimeZone) table() []Transition {
	if z == nil || len(z.tab) == 0 {
		return utcTable
	}
	return z.tab
}

// Name returns the name the zone was created with, or "UTC" for the zero
// value.
func (z *TimeZone) Name() string {
	if z == nil || z.name == "" {
		return "UTC"
	}
	return z.name
}

func (z *TimeZone) String() string { return z.Name() }

// Transitions returns a copy of the zone's transition table. The first
// entry extends back to the beginning of time.
func (z *TimeZone) Transitions() []Transition {
	tab := z.table()
	out := make([]Transition, len(tab))
	copy(out, tab)
	return out
}

// FixedZone returns a zone whose offset from UTC never changes. The name
// doubles as the abbreviation.
func FixedZone(name string, offset int) *TimeZone {
	return &TimeZone{
		name: name,
		tab:  []Transition{{When: math.MinInt64, Offset: offset, Abbr: name}},
	}
}

// FromTransitions builds a zone from an explicit transition table. The
// table must be non-empty with strictly ascending times; the first entry
// extends back to the beginning of time.
func FromTransitions(name string, ts []Transition) (*TimeZone, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("zone %q: empty transition table", name)
	}
	for i := 1; i < len(ts); i++ {
		if ts[i].When <= ts[i-1].When {
			return nil, fmt.Errorf("zone %q: transition times not strictly ascending at index %d: %d then %d", name, i, ts[i-1].When, ts[i].When)
		}
	}
	tab := make([]Transition, len(ts))
	copy(tab, ts)
	return &TimeZone{name: name, tab: tab}, nil
}

// ExtendMode selects how a zone behaves after the last transition recorded
// in its TZif data.
type ExtendMode int

const (
	// ExtendPOSIX expands the footer TZ string into further transitions.
	// This is the default.
	ExtendPOSIX ExtendMode = iota
	// ExtendRepeatLast lets the offset in effect at the last recorded
	// transition continue indefinitely.
	ExtendRepeatLast
)

// defaultExtendThrough is the last year the footer rule is expanded to.
const defaultExtendThrough = 2200

type options struct {
	source        Source
	extend        ExtendMode
	extendThrough int
}

// Option configures Load and FromTZif.
type Option func(*options)

// WithSource sets the source Load reads TZif data from. The default is the
// operating system's zoneinfo database.
func WithSource(s Source) Option { return func(o *options) { o.source = s } }

// WithExtend sets how the zone extends past its last recorded transition.
func WithExtend(m ExtendMode) Option { return func(o *options) { o.extend = m } }

// WithExtendThrough sets the last year the footer TZ string is expanded to
// under ExtendPOSIX.
func WithExtendThrough(year int) Option { return func(o *options) { o.extendThrough = year } }

func buildOptions(opts []Option) options {
	o := options{extend: ExtendPOSIX, extendThrough: defaultExtendThrough}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FromTZif builds a zone from decoded TZif data. An initial entry covering
// all time before the first recorded transition is derived from the zone
// types, and under ExtendPOSIX the footer TZ string is expanded into
// transitions beyond the recorded ones.
func FromTZif(name string, d tzif.Data, opts ...Option) (*TimeZone, error) {
	if err := tzif.Validate(d); err != nil {
		return nil, fmt.Errorf("zone %q: %w", name, err)
	}
	o := buildOptions(opts)

	tab := make([]Transition, 0, len(d.TransitionTimes)+1)
	tab = append(tab, transitionFor(d, firstZoneType(d), math.MinInt64))
	for i, when := range d.TransitionTimes {
		tab = append(tab, transitionFor(d, d.ZoneTypes[d.TransitionTypes[i]], when))
	}

	if o.extend == ExtendPOSIX && d.TZString != "" {
		rule, err := posixtz.Parse(d.TZString)
		if err != nil {
			return nil, fmt.Errorf("zone %q: footer: %w", name, err)
		}
		last := tab[len(tab)-1].When
		from := 1970
		if last != math.MinInt64 {
			from = calmath.CivilFromSeconds(last).Year
		}
		for _, x := range rule.Expand(from, o.extendThrough) {
			if x.When <= last {
				continue
			}
			tab = append(tab, Transition{When: x.When, Offset: x.Offset, DST: x.DST, Abbr: x.Abbr})
		}
	}

	return &TimeZone{name: name, tab: tab}, nil
}

func transitionFor(d tzif.Data, zt tzif.ZoneType, when int64) Transition {
	abbr, _ := d.Designation(zt) // validated by Validate
	return Transition{When: when, Offset: int(zt.Offset), DST: zt.DST, Abbr: abbr}
}

// firstZoneType picks the zone type in effect before the first recorded
// transition, using the heuristic from tzfile(5): prefer the first type not
// referenced by any transition, then the first non-DST type at or before
// the first transition's type, then the first non-DST type, then type 0.
func firstZoneType(d tzif.Data) tzif.ZoneType {
	used := make([]bool, len(d.ZoneTypes))
	for _, ti := range d.TransitionTypes {
		used[ti] = true
	}
	if !used[0] {
		return d.ZoneTypes[0]
	}
	if len(d.TransitionTypes) > 0 && d.ZoneTypes[d.TransitionTypes[0]].DST {
		for i := int(d.TransitionTypes[0]) - 1; i >= 0; i-- {
			if !d.ZoneTypes[i].DST {
				return d.ZoneTypes[i]
			}
		}
	}
	for _, zt := range d.ZoneTypes {
		if !zt.DST {
			return zt
		}
	}
	return d.ZoneTypes[0]
}
