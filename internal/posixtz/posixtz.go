// Package posixtz parses POSIX TZ strings, the rule language carried in the
// footer of version 2+ TZif files, and expands the recurring daylight saving
// rules they describe into concrete transitions.
//
// The accepted grammar is the expanded format of the TZ environment variable
// from Section 8.3 of the POSIX Base Definitions, with the TZif extensions
// from RFC 8536 Section 3.3.1 (quoted <abbr> designations and transition
// times up to 167 hours).
package posixtz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tzmath/go-civil/internal/calmath"
)

// Rule is a parsed TZ string.
type Rule struct {
	// StdAbbr and StdOffset describe standard time. The offset is in
	// seconds east of UTC; note that the TZ grammar itself counts hours
	// west of UTC, so "EST5" yields -18000.
	StdAbbr   string
	StdOffset int

	// DST reports whether the rule defines daylight saving time at all.
	// If false, the remaining fields are zero.
	DST       bool
	DSTAbbr   string
	DSTOffset int

	// Start and End give the yearly transitions into and out of daylight
	// saving time.
	Start DateRule
	End   DateRule
}

// DateRuleForm is the form of a yearly transition date.
type DateRuleForm int

const (
	// Julian1 is the Jn form: day n (1-365), never counting February 29.
	Julian1 DateRuleForm = iota
	// ZeroBased is the bare n form: day n (0-365), counting February 29.
	ZeroBased
	// MonthWeekDay is the Mm.w.d form: day d (0=Sunday) of week w (1-5,
	// 5 meaning the last such day) of month m.
	MonthWeekDay
)

// DateRule is one side of the recurring rule pair.
type DateRule struct {
	Form    DateRuleForm
	Day     int          // Jn and n forms
	Month   time.Month   // Mm.w.d form
	Week    int          // Mm.w.d form
	Weekday time.Weekday // Mm.w.d form

	// TimeOfDay is the local time of the transition in seconds after
	// 00:00, possibly negative or beyond 24h. Defaults to 02:00:00.
	TimeOfDay int64
}

// Transition is one expanded offset change.
type Transition struct {
	When   int64 // Unix seconds
	Offset int   // seconds east of UTC
	DST    bool
	Abbr   string
}

const defaultTimeOfDay = 2 * calmath.SecondsPerHour

// Parse parses a TZ string such as "EST5EDT,M3.2.0,M11.1.0" or "<+04>-4".
// A rule that names daylight saving time but no transition dates gets the
// default United States rules, matching tzset(3).
func Parse(s string) (Rule, error) {
	var r Rule
	rest := s

	abbr, rest, err := parseAbbr(rest)
	if err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: standard designation: %w", s, err)
	}
	off, rest, err := parseOffset(rest, 24*calmath.SecondsPerHour)
	if err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: standard offset: %w", s, err)
	}
	// Hours west of UT in the grammar, seconds east of UT here.
	r.StdAbbr, r.StdOffset = abbr, int(-off)

	if rest == "" {
		return r, nil
	}

	if rest[0] != ',' {
		r.DST = true
		r.DSTAbbr, rest, err = parseAbbr(rest)
		if err != nil {
			return Rule{}, fmt.Errorf("parse TZ %q: DST designation: %w", s, err)
		}
		if rest != "" && rest[0] != ',' {
			off, rest, err = parseOffset(rest, 24*calmath.SecondsPerHour)
			if err != nil {
				return Rule{}, fmt.Errorf("parse TZ %q: DST offset: %w", s, err)
			}
			r.DSTOffset = int(-off)
		} else {
			// One hour ahead of standard time by default.
			r.DSTOffset = r.StdOffset + calmath.SecondsPerHour
		}
	}

	if rest == "" {
		if r.DST {
			// No transition dates given; tzset(3) applies the US rules.
			r.Start = DateRule{Form: MonthWeekDay, Month: time.March, Week: 2, Weekday: time.Sunday, TimeOfDay: defaultTimeOfDay}
			r.End = DateRule{Form: MonthWeekDay, Month: time.November, Week: 1, Weekday: time.Sunday, TimeOfDay: defaultTimeOfDay}
		}
		return r, nil
	}
	if !r.DST {
		return Rule{}, fmt.Errorf("parse TZ %q: transition dates without a DST designation", s)
	}

	r.Start, rest, err = parseDateRule(rest[1:])
	if err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: start date: %w", s, err)
	}
	if rest == "" || rest[0] != ',' {
		return Rule{}, fmt.Errorf("parse TZ %q: missing end date", s)
	}
	r.End, rest, err = parseDateRule(rest[1:])
	if err != nil {
		return Rule{}, fmt.Errorf("parse TZ %q: end date: %w", s, err)
	}
	if rest != "" {
		return Rule{}, fmt.Errorf("parse TZ %q: trailing garbage %q", s, rest)
	}
	return r, nil
}

// parseAbbr parses a zone designation: either at least three alphabetic
// characters, or any characters quoted in angle brackets.
func parseAbbr(s string) (abbr, rest string, err error) {
	if strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quoted designation")
		}
		if end == 1 {
			return "", "", fmt.Errorf("empty quoted designation")
		}
		return s[1:end], s[end+1:], nil
	}
	var i int
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i < 3 {
		return "", "", fmt.Errorf("designation %q shorter than three characters", s[:i])
	}
	return s[:i], s[i:], nil
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseOffset parses [+-]hh[:mm[:ss]] and returns it in seconds. Absolute
// values beyond max are rejected.
func parseOffset(s string, max int64) (seconds int64, rest string, err error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	hh, s, err := parseInt(s, 3)
	if err != nil {
		return 0, "", fmt.Errorf("hours: %w", err)
	}
	seconds = int64(hh) * calmath.SecondsPerHour
	if strings.HasPrefix(s, ":") {
		var mm int
		mm, s, err = parseInt(s[1:], 2)
		if err != nil {
			return 0, "", fmt.Errorf("minutes: %w", err)
		}
		if mm > 59 {
			return 0, "", fmt.Errorf("minutes out of range: %d", mm)
		}
		seconds += int64(mm) * calmath.SecondsPerMinute
		if strings.HasPrefix(s, ":") {
			var ss int
			ss, s, err = parseInt(s[1:], 2)
			if err != nil {
				return 0, "", fmt.Errorf("seconds: %w", err)
			}
			if ss > 59 {
				return 0, "", fmt.Errorf("seconds out of range: %d", ss)
			}
			seconds += int64(ss)
		}
	}
	if seconds > max {
		return 0, "", fmt.Errorf("offset %ds out of range", seconds)
	}
	if neg {
		seconds = -seconds
	}
	return seconds, s, nil
}

// parseInt consumes up to maxDigits leading digits.
func parseInt(s string, maxDigits int) (int, string, error) {
	var i, n int
	for i < len(s) && i < maxDigits && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("expected digits, got %q", s)
	}
	return n, s[i:], nil
}

func parseDateRule(s string) (DateRule, string, error) {
	var (
		d   DateRule
		err error
	)
	switch {
	case strings.HasPrefix(s, "J"):
		d.Form = Julian1
		d.Day, s, err = parseInt(s[1:], 3)
		if err != nil {
			return DateRule{}, "", err
		}
		if d.Day < 1 || d.Day > 365 {
			return DateRule{}, "", fmt.Errorf("julian day out of range: %d", d.Day)
		}
	case strings.HasPrefix(s, "M"):
		d.Form = MonthWeekDay
		var m, w, wd int
		if m, s, err = parseInt(s[1:], 2); err != nil {
			return DateRule{}, "", fmt.Errorf("month: %w", err)
		}
		if m < 1 || m > 12 {
			return DateRule{}, "", fmt.Errorf("month out of range: %d", m)
		}
		if !strings.HasPrefix(s, ".") {
			return DateRule{}, "", fmt.Errorf("expected '.' after month")
		}
		if w, s, err = parseInt(s[1:], 1); err != nil {
			return DateRule{}, "", fmt.Errorf("week: %w", err)
		}
		if w < 1 || w > 5 {
			return DateRule{}, "", fmt.Errorf("week out of range: %d", w)
		}
		if !strings.HasPrefix(s, ".") {
			return DateRule{}, "", fmt.Errorf("expected '.' after week")
		}
		if wd, s, err = parseInt(s[1:], 1); err != nil {
			return DateRule{}, "", fmt.Errorf("weekday: %w", err)
		}
		if wd > 6 {
			return DateRule{}, "", fmt.Errorf("weekday out of range: %d", wd)
		}
		d.Month, d.Week, d.Weekday = time.Month(m), w, time.Weekday(wd)
	default:
		d.Form = ZeroBased
		if d.Day, s, err = parseInt(s, 3); err != nil {
			return DateRule{}, "", err
		}
		if d.Day > 365 {
			return DateRule{}, "", fmt.Errorf("day out of range: %d", d.Day)
		}
	}

	d.TimeOfDay = defaultTimeOfDay
	if strings.HasPrefix(s, "/") {
		// RFC 8536 extends the time to -167h..167h.
		d.TimeOfDay, s, err = parseOffset(s[1:], 167*calmath.SecondsPerHour)
		if err != nil {
			return DateRule{}, "", fmt.Errorf("time: %w", err)
		}
	}
	return d, s, nil
}

// resolve returns the month and day the rule lands on in the given year.
func (d DateRule) resolve(year int) (time.Month, int) {
	switch d.Form {
	case Julian1:
		// February 29 is never counted, so the mapping from day number
		// to month and day is that of any non-leap year.
		m, day := monthDayOfYearDay(1970, d.Day)
		return m, day
	case ZeroBased:
		m, day := monthDayOfYearDay(year, d.Day+1)
		return m, day
	default: // MonthWeekDay
		first := calmath.Weekday(calmath.DaysFromCivil(year, d.Month, 1))
		day := 1 + (d.Week-1)*7 + int(d.Weekday-first+7)%7
		if day > daysInMonth(year, d.Month) {
			day -= 7 // week 5 means the last such weekday
		}
		return d.Month, day
	}
}

func monthDayOfYearDay(year, yday int) (time.Month, int) {
	_, m, d := calmath.CivilFromDays(calmath.DaysFromCivil(year, time.January, 1) + int64(yday) - 1)
	return m, d
}

func daysInMonth(year int, month time.Month) int {
	d := calmath.DaysFromCivil(year, month+1, 1) - calmath.DaysFromCivil(year, month, 1)
	return int(d)
}

// Expand produces the concrete transitions of the rule for every year in
// [fromYear, toYear], sorted by time. A rule without DST expands to
// nothing: the standard offset simply continues to apply.
func (r Rule) Expand(fromYear, toYear int) []Transition {
	if !r.DST {
		return nil
	}
	var ts []Transition
	for y := fromYear; y <= toYear; y++ {
		// The start time is wall clock time under the standard offset,
		// the end time wall clock time under the DST offset.
		sm, sd := r.Start.resolve(y)
		ts = append(ts, Transition{
			When:   calmath.SecondsFromCivil(y, sm, sd, 0, 0, 0) + r.Start.TimeOfDay - int64(r.StdOffset),
			Offset: r.DSTOffset,
			DST:    true,
			Abbr:   r.DSTAbbr,
		})
		em, ed := r.End.resolve(y)
		ts = append(ts, Transition{
			When:   calmath.SecondsFromCivil(y, em, ed, 0, 0, 0) + r.End.TimeOfDay - int64(r.DSTOffset),
			Offset: r.StdOffset,
			DST:    false,
			Abbr:   r.StdAbbr,
		})
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].When < ts[j].When })
	return ts
}
