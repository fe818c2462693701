package tz

import (
	"math"
	"sort"
	"time"

	"github.com/tzmath/go-civil/civil"
	"github.com/tzmath/go-civil/internal/calmath"
)

// AbsoluteLookup is the result of mapping an absolute instant into a zone.
type AbsoluteLookup struct {
	CS     civil.Second // the civil time at the instant
	Offset int          // seconds east of UTC in effect
	DST    bool
	Abbr   string
}

// Kind classifies a civil time within a zone.
type Kind int

const (
	// Unique civil times occur exactly once.
	Unique Kind = iota
	// Skipped civil times never occur: a forward transition jumped over
	// them.
	Skipped
	// Repeated civil times occur twice: a backward transition replayed
	// them.
	Repeated
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Skipped:
		return "skipped"
	case Repeated:
		return "repeated"
	default:
		return "invalid"
	}
}

// CivilLookup is the result of mapping a civil time into a zone.
//
// For a Unique civil time all three instants are equal. For a Skipped one,
// Pre is the instant the civil time would have denoted under the offset in
// effect before the transition, Post the instant under the offset after it,
// and Trans the transition instant itself. For a Repeated one, Pre is the
// earlier occurrence, Post the later, and Trans again the transition.
type CivilLookup struct {
	Kind  Kind
	Pre   time.Time
	Trans time.Time
	Post  time.Time
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func civilOf(sec int64) civil.Second {
	f := calmath.CivilFromSeconds(sec)
	return civil.NewSecond(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second)
}

// Lookup returns the civil time and offset in effect at the given instant.
// It is total: every instant has exactly one answer.
func (z *TimeZone) Lookup(t time.Time) AbsoluteLookup {
	tab := z.table()
	u := t.Unix()
	i := sort.Search(len(tab), func(i int) bool { return tab[i].When > u }) - 1
	if i < 0 {
		i = 0 // the first entry extends to the beginning of time
	}
	tr := tab[i]
	return AbsoluteLookup{
		CS:     civilOf(u + int64(tr.Offset)),
		Offset: tr.Offset,
		DST:    tr.DST,
		Abbr:   tr.Abbr,
	}
}

// ToCivil is shorthand for Lookup(t).CS.
func (z *TimeZone) ToCivil(t time.Time) civil.Second { return z.Lookup(t).CS }

// civilStart is the first civil second segment i covers in local time.
func civilStart(tab []Transition, i int) int64 {
	if i == 0 {
		return math.MinInt64
	}
	return tab[i].When + int64(tab[i].Offset)
}

// LookupCivil classifies the given civil time and returns the instant or
// instants it corresponds to.
func (z *TimeZone) LookupCivil(cs civil.Second) CivilLookup {
	tab := z.table()
	s := calmath.SecondsFromCivil(cs.Year(), cs.Month(), cs.Day(), cs.Hour(), cs.Minute(), cs.Second())

	// The segment whose local clock last reached s.
	j := sort.Search(len(tab), func(i int) bool { return civilStart(tab, i) > s }) - 1

	t := s - int64(tab[j].Offset)
	if j+1 < len(tab) && t >= tab[j+1].When {
		// Reading s under segment j's offset lands beyond the segment:
		// the clock jumped over s.
		return CivilLookup{
			Kind:  Skipped,
			Pre:   unixTime(t),
			Trans: unixTime(tab[j+1].When),
			Post:  unixTime(s - int64(tab[j+1].Offset)),
		}
	}
	if j > 0 {
		prevOff := int64(tab[j-1].Offset)
		if s < tab[j].When+prevOff && s-prevOff >= tab[j-1].When {
			// Segment j-1's clock also reached s before the transition
			// set it back.
			return CivilLookup{
				Kind:  Repeated,
				Pre:   unixTime(s - prevOff),
				Trans: unixTime(tab[j].When),
				Post:  unixTime(t),
			}
		}
	}
	u := unixTime(t)
	return CivilLookup{Kind: Unique, Pre: u, Trans: u, Post: u}
}

// FromCivil maps a civil time to a single instant. Unique civil times map
// to their instant; skipped ones to the transition instant, so the result
// never moves backward as the civil input grows; repeated ones to their
// earlier occurrence.
func (z *TimeZone) FromCivil(cs civil.Second) time.Time {
	cl := z.LookupCivil(cs)
	switch cl.Kind {
	case Skipped:
		return cl.Trans
	case Repeated:
		return cl.Pre
	default:
		return cl.Pre
	}
}
