package tzformat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tzmath/go-civil/civil"
	"github.com/tzmath/go-civil/internal/calmath"
	"github.com/tzmath/go-civil/tz"
)

// ParseError describes a failure to parse an input against a layout. Pos
// is the byte offset into the input at which parsing failed.
type ParseError struct {
	Layout string
	Input  string
	Pos    int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q with layout %q at position %d: %v", e.Input, e.Layout, e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// fields collects the values read during a parse. Absent fields keep the
// civil epoch defaults: 1970-01-01 00:00:00.
type fields struct {
	year      int
	haveYear  bool
	century   int
	haveCent  bool
	yy        int
	haveYY    bool
	month     time.Month
	haveMonth bool
	day       int
	haveDay   bool
	yday      int
	hour      int
	hour12    bool
	pm        bool
	minute    int
	sec       int
	ns        int
	offset    int
	haveOff   bool
	epoch     int64
	haveEpoch bool
}

// Parse reads a civil time from input according to layout and resolves it
// to an instant. If the layout carried a UTC offset (%z or %Ez), the
// offset determines the instant directly; otherwise the civil time is
// resolved through the zone, with skipped times mapping to the transition
// and repeated times to their earlier occurrence. Whitespace in the layout
// matches any run of whitespace, including none.
func Parse(layout, input string, zone *tz.TimeZone) (time.Time, error) {
	p := &parser{layout: layout, input: input}
	p.f.month, p.f.day = time.January, 1
	if err := p.run(layout); err != nil {
		return time.Time{}, &ParseError{Layout: layout, Input: input, Pos: p.pos, Err: err}
	}
	for p.pos < len(input) && isSpace(input[p.pos]) {
		p.pos++
	}
	if p.pos < len(input) {
		return time.Time{}, &ParseError{Layout: layout, Input: input, Pos: p.pos, Err: errors.New("trailing input")}
	}
	return p.resolve(zone), nil
}

type parser struct {
	layout, input string
	pos           int
	f             fields
}

func (p *parser) run(layout string) error {
	for i := 0; i < len(layout); {
		c := layout[i]
		switch {
		case c == '%':
			spec, width, n := nextSpec(layout[i:])
			i += n
			if err := p.parseSpec(spec, width); err != nil {
				return err
			}
		case isSpace(c):
			for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
				p.pos++
			}
			i++
		default:
			if p.pos >= len(p.input) || p.input[p.pos] != c {
				return fmt.Errorf("expected %q", c)
			}
			p.pos++
			i++
		}
	}
	return nil
}

func (p *parser) parseSpec(spec byte, width int) error {
	switch spec {
	case 'Y', '4':
		y, err := p.signedNum(6)
		if err != nil {
			return fmt.Errorf("year: %w", err)
		}
		p.f.year, p.f.haveYear = y, true
	case 'y':
		v, err := p.num(2, 0, 99)
		if err != nil {
			return fmt.Errorf("year of century: %w", err)
		}
		p.f.yy, p.f.haveYY = v, true
	case 'C':
		v, err := p.num(2, 0, 99)
		if err != nil {
			return fmt.Errorf("century: %w", err)
		}
		p.f.century, p.f.haveCent = v, true
	case 'm':
		v, err := p.num(2, 1, 12)
		if err != nil {
			return fmt.Errorf("month: %w", err)
		}
		p.f.month, p.f.haveMonth = time.Month(v), true
	case 'B', 'b', 'h':
		m, err := p.monthName()
		if err != nil {
			return err
		}
		p.f.month, p.f.haveMonth = m, true
	case 'd', 'e':
		if spec == 'e' && p.pos < len(p.input) && p.input[p.pos] == ' ' {
			p.pos++
		}
		v, err := p.num(2, 1, 31)
		if err != nil {
			return fmt.Errorf("day: %w", err)
		}
		p.f.day, p.f.haveDay = v, true
	case 'j':
		v, err := p.num(3, 1, 366)
		if err != nil {
			return fmt.Errorf("day of year: %w", err)
		}
		p.f.yday = v
	case 'H':
		v, err := p.num(2, 0, 23)
		if err != nil {
			return fmt.Errorf("hour: %w", err)
		}
		p.f.hour, p.f.hour12 = v, false
	case 'I':
		v, err := p.num(2, 1, 12)
		if err != nil {
			return fmt.Errorf("hour: %w", err)
		}
		p.f.hour, p.f.hour12 = v, true
	case 'p':
		switch {
		case p.hasFold("PM"):
			p.f.pm = true
		case p.hasFold("AM"):
			p.f.pm = false
		default:
			return errors.New("expected AM or PM")
		}
	case 'M':
		v, err := p.num(2, 0, 59)
		if err != nil {
			return fmt.Errorf("minute: %w", err)
		}
		p.f.minute = v
	case 'S':
		v, err := p.num(2, 0, 60)
		if err != nil {
			return fmt.Errorf("second: %w", err)
		}
		p.f.sec = v
	case '#', '*': // %E#S, %E*S
		v, err := p.num(2, 0, 60)
		if err != nil {
			return fmt.Errorf("second: %w", err)
		}
		p.f.sec = v
		if p.pos < len(p.input) && p.input[p.pos] == '.' {
			p.pos++
			ns, err := p.fraction()
			if err != nil {
				return err
			}
			p.f.ns = ns
		}
	case 'A', 'a':
		// Weekday names are accepted and ignored: the date fields alone
		// determine the day.
		if _, err := p.weekdayName(); err != nil {
			return err
		}
	case 'u':
		if _, err := p.num(1, 1, 7); err != nil {
			return fmt.Errorf("weekday: %w", err)
		}
	case 'w':
		if _, err := p.num(1, 0, 6); err != nil {
			return fmt.Errorf("weekday: %w", err)
		}
	case 'D':
		return p.run("%m/%d/%y")
	case 'F':
		return p.run("%Y-%m-%d")
	case 'R':
		return p.run("%H:%M")
	case 'T':
		return p.run("%H:%M:%S")
	case 'z':
		off, err := p.utcOffset()
		if err != nil {
			return err
		}
		p.f.offset, p.f.haveOff = off, true
	case 'Z':
		if err := p.abbreviation(); err != nil {
			return err
		}
	case 's':
		v, err := p.signedNum(19)
		if err != nil {
			return fmt.Errorf("seconds since epoch: %w", err)
		}
		p.f.epoch, p.f.haveEpoch = int64(v), true
	case 'n', 't':
		for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
			p.pos++
		}
	case '%':
		if p.pos >= len(p.input) || p.input[p.pos] != '%' {
			return errors.New("expected '%'")
		}
		p.pos++
	case 0:
		return errors.New("incomplete specifier in layout")
	default:
		return fmt.Errorf("unsupported specifier %%%c", spec)
	}
	return nil
}

func (p *parser) resolve(zone *tz.TimeZone) time.Time {
	f := p.f
	if f.haveEpoch {
		return time.Unix(f.epoch, int64(f.ns)).UTC()
	}

	year := 1970
	switch {
	case f.haveYear:
		year = f.year
	case f.haveCent:
		year = f.century*100 + f.yy
	case f.haveYY:
		// The strptime(3) pivot: 69-99 mean the 1900s.
		if f.yy >= 69 {
			year = 1900 + f.yy
		} else {
			year = 2000 + f.yy
		}
	}

	month, day := f.month, f.day
	if f.yday > 0 && !f.haveMonth && !f.haveDay {
		_, month, day = calmath.CivilFromDays(calmath.DaysFromCivil(year, time.January, 1) + int64(f.yday) - 1)
	}

	hour := f.hour
	if f.hour12 {
		hour %= 12
		if f.pm {
			hour += 12
		}
	}

	cs := civil.NewSecond(year, month, day, hour, f.minute, f.sec)
	if f.haveOff {
		u := calmath.SecondsFromCivil(cs.Year(), cs.Month(), cs.Day(), cs.Hour(), cs.Minute(), cs.Second()) - int64(f.offset)
		return time.Unix(u, int64(f.ns)).UTC()
	}
	return zone.FromCivil(cs).Add(time.Duration(f.ns))
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// num reads up to maxDigits digits and checks the range.
func (p *parser) num(maxDigits, lo, hi int) (int, error) {
	var i, v int
	for p.pos+i < len(p.input) && i < maxDigits && isDigit(p.input[p.pos+i]) {
		v = v*10 + int(p.input[p.pos+i]-'0')
		i++
	}
	if i == 0 {
		return 0, errors.New("expected digits")
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", v, lo, hi)
	}
	p.pos += i
	return v, nil
}

func (p *parser) signedNum(maxDigits int) (int, error) {
	neg := false
	save := p.pos
	if p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '-':
			neg = true
			p.pos++
		case '+':
			p.pos++
		}
	}
	var i, v int
	for p.pos+i < len(p.input) && i < maxDigits && isDigit(p.input[p.pos+i]) {
		v = v*10 + int(p.input[p.pos+i]-'0')
		i++
	}
	if i == 0 {
		p.pos = save
		return 0, errors.New("expected digits")
	}
	p.pos += i
	if neg {
		v = -v
	}
	return v, nil
}

// fraction reads digits after a decimal point into nanoseconds, truncating
// past nanosecond precision.
func (p *parser) fraction() (int, error) {
	var i, ns int
	for p.pos+i < len(p.input) && isDigit(p.input[p.pos+i]) {
		if i < 9 {
			ns = ns*10 + int(p.input[p.pos+i]-'0')
		}
		i++
	}
	if i == 0 {
		return 0, errors.New("expected fractional digits")
	}
	for j := i; j < 9; j++ {
		ns *= 10
	}
	p.pos += i
	return ns, nil
}

// utcOffset reads +hh:mm, +hhmm, or the RFC 3339 "Z" for UTC.
func (p *parser) utcOffset() (int, error) {
	if p.pos < len(p.input) && (p.input[p.pos] == 'Z' || p.input[p.pos] == 'z') {
		p.pos++
		return 0, nil
	}
	if p.pos >= len(p.input) || (p.input[p.pos] != '+' && p.input[p.pos] != '-') {
		return 0, errors.New("expected UTC offset")
	}
	neg := p.input[p.pos] == '-'
	p.pos++
	hh, err := p.num(2, 0, 23)
	if err != nil {
		return 0, fmt.Errorf("offset hours: %w", err)
	}
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
	}
	mm, err := p.num(2, 0, 59)
	if err != nil {
		return 0, fmt.Errorf("offset minutes: %w", err)
	}
	off := hh*3600 + mm*60
	if neg {
		off = -off
	}
	return off, nil
}

// abbreviation consumes a zone abbreviation such as "EST" or "+0330" and
// ignores it: abbreviations are not unique enough to pick an offset.
func (p *parser) abbreviation() error {
	var i int
	for p.pos+i < len(p.input) && isAbbrByte(p.input[p.pos+i]) {
		i++
	}
	if i == 0 {
		return errors.New("expected zone abbreviation")
	}
	p.pos += i
	return nil
}

func isAbbrByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || isDigit(c) || c == '+' || c == '-' || c == '_'
}

func (p *parser) hasFold(s string) bool {
	if len(p.input)-p.pos < len(s) {
		return false
	}
	if !strings.EqualFold(p.input[p.pos:p.pos+len(s)], s) {
		return false
	}
	p.pos += len(s)
	return true
}

func (p *parser) monthName() (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if p.hasFold(name) {
			return m, nil
		}
		if p.hasFold(name[:3]) {
			return m, nil
		}
	}
	return 0, errors.New("expected month name")
}

func (p *parser) weekdayName() (time.Weekday, error) {
	for w := time.Sunday; w <= time.Saturday; w++ {
		name := w.String()
		if p.hasFold(name) {
			return w, nil
		}
		if p.hasFold(name[:3]) {
			return w, nil
		}
	}
	return 0, errors.New("expected weekday name")
}
