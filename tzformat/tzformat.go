// Package tzformat formats and parses civil time using strftime-style
// layouts, resolving instants through a time zone.
//
// The supported specifiers are those of strftime(3) that concern the
// Gregorian calendar and clock, plus the extensions %Ez (RFC 3339 offset),
// %E#S and %E*S (fractional seconds), and %E4Y (four-digit year).
package tzformat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tzmath/go-civil/civil"
	"github.com/tzmath/go-civil/tz"
)

// DefaultLayout renders an RFC 3339-shaped timestamp with full fractional
// seconds, such as "2015-03-08T01:59:59.5-05:00".
const DefaultLayout = "%Y-%m-%dT%H:%M:%E*S%Ez"

// FormatDefault renders t in the zone using DefaultLayout.
func FormatDefault(t time.Time, zone *tz.TimeZone) string {
	return Format(DefaultLayout, t, zone)
}

// Format renders the instant t as civil time in the given zone. Unknown
// specifiers are copied through literally.
func Format(layout string, t time.Time, zone *tz.TimeZone) string {
	al := zone.Lookup(t)
	cs := al.CS
	ns := t.Nanosecond()

	var b strings.Builder
	for i := 0; i < len(layout); {
		if layout[i] != '%' {
			b.WriteByte(layout[i])
			i++
			continue
		}
		spec, width, n := nextSpec(layout[i:])
		if spec == 0 {
			b.WriteString(layout[i : i+n])
			i += n
			continue
		}
		i += n
		formatSpec(&b, spec, width, cs, al, t, ns)
	}
	return b.String()
}

// nextSpec decodes the specifier starting at the '%' in s. It returns the
// final specifier byte, the digit of an %E#S form, and the number of bytes
// consumed. A lone trailing '%' is reported as spec 0.
func nextSpec(s string) (spec byte, width int, n int) {
	if len(s) < 2 {
		return 0, 0, len(s)
	}
	if s[1] != 'E' {
		return s[1], 0, 2
	}
	if len(s) < 3 {
		return 0, 0, len(s)
	}
	switch {
	case s[2] == 'z':
		return 'z', -1, 3 // %Ez: -1 marks the extended, colon form
	case s[2] == '*' && len(s) > 3 && s[3] == 'S':
		return '*', 0, 4
	case s[2] == '4' && len(s) > 3 && s[3] == 'Y':
		return '4', 0, 4
	case s[2] >= '0' && s[2] <= '9' && len(s) > 3 && s[3] == 'S':
		return '#', int(s[2] - '0'), 4
	}
	// Unknown %E form: emit it literally.
	return 0, 0, 2
}

func formatSpec(b *strings.Builder, spec byte, width int, cs civil.Second, al tz.AbsoluteLookup, t time.Time, ns int) {
	switch spec {
	case 'Y':
		b.WriteString(strconv.Itoa(cs.Year()))
	case '4': // %E4Y
		y := cs.Year()
		if y < 0 {
			b.WriteByte('-')
			y = -y
		}
		fmt.Fprintf(b, "%04d", y)
	case 'y':
		fmt.Fprintf(b, "%02d", mod(cs.Year(), 100))
	case 'C':
		fmt.Fprintf(b, "%02d", div(cs.Year(), 100))
	case 'm':
		fmt.Fprintf(b, "%02d", int(cs.Month()))
	case 'd':
		fmt.Fprintf(b, "%02d", cs.Day())
	case 'e':
		fmt.Fprintf(b, "%2d", cs.Day())
	case 'j':
		fmt.Fprintf(b, "%03d", civil.YearDay(civil.DayOf(cs)))
	case 'H':
		fmt.Fprintf(b, "%02d", cs.Hour())
	case 'I':
		h := cs.Hour() % 12
		if h == 0 {
			h = 12
		}
		fmt.Fprintf(b, "%02d", h)
	case 'p':
		if cs.Hour() < 12 {
			b.WriteString("AM")
		} else {
			b.WriteString("PM")
		}
	case 'M':
		fmt.Fprintf(b, "%02d", cs.Minute())
	case 'S':
		fmt.Fprintf(b, "%02d", cs.Second())
	case '#': // %E#S
		fmt.Fprintf(b, "%02d", cs.Second())
		if width > 0 {
			frac := fmt.Sprintf("%09d", ns)
			b.WriteByte('.')
			b.WriteString(frac[:width])
		}
	case '*': // %E*S
		fmt.Fprintf(b, "%02d", cs.Second())
		if ns != 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
			b.WriteByte('.')
			b.WriteString(frac)
		}
	case 'A':
		b.WriteString(civil.Weekday(civil.DayOf(cs)).String())
	case 'a':
		b.WriteString(civil.Weekday(civil.DayOf(cs)).String()[:3])
	case 'B':
		b.WriteString(cs.Month().String())
	case 'b', 'h':
		b.WriteString(cs.Month().String()[:3])
	case 'u':
		wd := int(civil.Weekday(civil.DayOf(cs)))
		if wd == 0 {
			wd = 7
		}
		b.WriteString(strconv.Itoa(wd))
	case 'w':
		b.WriteString(strconv.Itoa(int(civil.Weekday(civil.DayOf(cs)))))
	case 'D':
		formatCompound(b, "%m/%d/%y", cs, al, t, ns)
	case 'F':
		formatCompound(b, "%Y-%m-%d", cs, al, t, ns)
	case 'R':
		formatCompound(b, "%H:%M", cs, al, t, ns)
	case 'T':
		formatCompound(b, "%H:%M:%S", cs, al, t, ns)
	case 'z':
		off := al.Offset
		sign := byte('+')
		if off < 0 {
			sign, off = '-', -off
		}
		b.WriteByte(sign)
		if width < 0 { // %Ez
			fmt.Fprintf(b, "%02d:%02d", off/3600, off/60%60)
		} else {
			fmt.Fprintf(b, "%02d%02d", off/3600, off/60%60)
		}
	case 'Z':
		b.WriteString(al.Abbr)
	case 's':
		b.WriteString(strconv.FormatInt(t.Unix(), 10))
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case '%':
		b.WriteByte('%')
	default:
		b.WriteByte('%')
		b.WriteByte(spec)
	}
}

func formatCompound(b *strings.Builder, layout string, cs civil.Second, al tz.AbsoluteLookup, t time.Time, ns int) {
	for i := 0; i < len(layout); {
		if layout[i] != '%' {
			b.WriteByte(layout[i])
			i++
			continue
		}
		spec, width, n := nextSpec(layout[i:])
		i += n
		formatSpec(b, spec, width, cs, al, t, ns)
	}
}

// div and mod are floor division and modulus, so %y and %C stay consistent
// for years before the common era.
func div(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
