package tzformat

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tzmath/go-civil/tz"
)

func newYork(t *testing.T) *tz.TimeZone {
	t.Helper()
	z, err := tz.FromTransitions("America/New_York", []tz.Transition{
		{When: math.MinInt64, Offset: -5 * 3600, Abbr: "EST"},
		{When: 1425798000, Offset: -4 * 3600, DST: true, Abbr: "EDT"}, // 2015-03-08 07:00Z
		{When: 1446357600, Offset: -5 * 3600, Abbr: "EST"},            // 2015-11-01 06:00Z
	})
	if err != nil {
		t.Fatalf("FromTransitions() failed: %v", err)
	}
	return z
}

func tehran(t *testing.T) *tz.TimeZone {
	t.Helper()
	z, err := tz.FromTransitions("Asia/Tehran", []tz.Transition{
		{When: math.MinInt64, Offset: 3*3600 + 30*60, Abbr: "+0330"},
		{When: 247177800, Offset: 4 * 3600, Abbr: "+04"},
		{When: 283982400, Offset: 3*3600 + 30*60, Abbr: "+0330"},
	})
	if err != nil {
		t.Fatalf("FromTransitions() failed: %v", err)
	}
	return z
}

func TestFormatSpecifiers(t *testing.T) {
	ny := newYork(t)
	// 2015-06-15 08:34:56.123456789 EDT, a Monday.
	instant := time.Unix(1434371696, 123456789)
	cases := []struct {
		layout string
		want   string
	}{
		{"%Y", "2015"},
		{"%y", "15"},
		{"%C", "20"},
		{"%m", "06"},
		{"%d", "15"},
		{"%e", "15"},
		{"%j", "166"},
		{"%H", "08"},
		{"%I", "08"},
		{"%p", "AM"},
		{"%M", "34"},
		{"%S", "56"},
		{"%A", "Monday"},
		{"%a", "Mon"},
		{"%B", "June"},
		{"%b", "Jun"},
		{"%u", "1"},
		{"%w", "1"},
		{"%D", "06/15/15"},
		{"%F", "2015-06-15"},
		{"%R", "08:34"},
		{"%T", "08:34:56"},
		{"%z", "-0400"},
		{"%Ez", "-04:00"},
		{"%Z", "EDT"},
		{"%s", "1434371696"},
		{"%E0S", "56"},
		{"%E1S", "56.1"},
		{"%E3S", "56.123"},
		{"%E*S", "56.123456789"},
		{"%n", "\n"},
		{"%t", "\t"},
		{"%%", "%"},
		{"plain text", "plain text"},
		{"%H:%M:%S %Z", "08:34:56 EDT"},
	}
	for _, c := range cases {
		t.Run(c.layout, func(t *testing.T) {
			if got := Format(c.layout, instant, ny); got != c.want {
				t.Errorf("Format(%q) = %q, want %q", c.layout, got, c.want)
			}
		})
	}
}

func TestFormatDefaultLayout(t *testing.T) {
	ny := newYork(t)
	// Half a second before the 2015 spring-forward transition.
	instant := time.Unix(1425797999, 500000000)
	want := "2015-03-08T01:59:59.5-05:00"
	if got := Format(DefaultLayout, instant, ny); got != want {
		t.Errorf("Format(DefaultLayout) = %q, want %q", got, want)
	}
	// One second later the clock reads 03:00 EDT.
	want = "2015-03-08T03:00:00-04:00"
	if got := Format(DefaultLayout, time.Unix(1425798000, 0), ny); got != want {
		t.Errorf("Format(DefaultLayout) = %q, want %q", got, want)
	}
}

func TestFormatHourTwelve(t *testing.T) {
	utc := tz.UTC()
	cases := []struct {
		hour int
		want string
	}{
		{0, "12 AM"},
		{1, "01 AM"},
		{11, "11 AM"},
		{12, "12 PM"},
		{23, "11 PM"},
	}
	for _, c := range cases {
		instant := time.Date(2020, time.January, 1, c.hour, 0, 0, 0, time.UTC)
		if got := Format("%I %p", instant, utc); got != c.want {
			t.Errorf("Format(%%I %%p) at hour %d = %q, want %q", c.hour, got, c.want)
		}
	}
}

func TestFormatWideYear(t *testing.T) {
	utc := tz.UTC()
	instant := time.Date(567, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := Format("%Y", instant, utc); got != "567" {
		t.Errorf("Format(%%Y) = %q, want 567", got)
	}
	if got := Format("%E4Y", instant, utc); got != "0567" {
		t.Errorf("Format(%%E4Y) = %q, want 0567", got)
	}
}

// A 14h44m flight leaving New York at 12:01 on 1978-12-30 lands in Tehran
// at 11:45 local time the next day.
func TestFormatFlightArrival(t *testing.T) {
	ny, ir := newYork(t), tehran(t)
	dep, err := Parse("%Y-%m-%d %H:%M", "1978-12-30 12:01", ny)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	arr := dep.Add(14*time.Hour + 44*time.Minute)
	want := "1978-12-31T11:45:00+04:00"
	if got := Format(DefaultLayout, arr, ir); got != want {
		t.Errorf("Format(arrival) = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	ny := newYork(t)
	cases := []struct {
		name   string
		layout string
		input  string
		want   time.Time
	}{
		{
			name:   "civil time resolved through the zone",
			layout: "%Y-%m-%d %H:%M:%S",
			input:  "2015-06-15 08:34:56",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "explicit offset wins over the zone",
			layout: DefaultLayout,
			input:  "1978-12-31T11:45:00+04:00",
			want:   time.Date(1978, time.December, 31, 7, 45, 0, 0, time.UTC),
		},
		{
			name:   "offset without colon",
			layout: "%Y-%m-%d %H:%M:%S %z",
			input:  "2015-06-15 08:34:56 -0400",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "Z means UTC",
			layout: "%Y-%m-%dT%H:%M:%S%Ez",
			input:  "2015-06-15T12:34:56Z",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "skipped civil time maps to the transition",
			layout: "%Y-%m-%d %H:%M:%S",
			input:  "2015-03-08 02:30:00",
			want:   time.Date(2015, time.March, 8, 7, 0, 0, 0, time.UTC),
		},
		{
			name:   "repeated civil time maps to the earlier occurrence",
			layout: "%Y-%m-%d %H:%M:%S",
			input:  "2015-11-01 01:30:00",
			want:   time.Date(2015, time.November, 1, 5, 30, 0, 0, time.UTC),
		},
		{
			name:   "fractional seconds",
			layout: DefaultLayout,
			input:  "2015-03-08T01:59:59.5-05:00",
			want:   time.Unix(1425797999, 500000000).UTC(),
		},
		{
			name:   "twelve hour clock",
			layout: "%Y-%m-%d %I:%M %p",
			input:  "2015-06-15 08:34 PM",
			want:   time.Date(2015, time.June, 16, 0, 34, 0, 0, time.UTC), // 20:34 EDT
		},
		{
			name:   "month name",
			layout: "%B %e, %Y %H:%M:%S",
			input:  "June 15, 2015 08:34:56",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "weekday name accepted and ignored",
			layout: "%a %Y-%m-%d %H:%M:%S",
			input:  "Mon 2015-06-15 08:34:56",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "day of year",
			layout: "%Y %j %H:%M:%S",
			input:  "2015 166 08:34:56",
			want:   time.Unix(1434371696, 0).UTC(),
		},
		{
			name:   "epoch seconds",
			layout: "%s",
			input:  "1434371696",
			want:   time.Unix(1434371696, 0).UTC(),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(c.layout, c.input, ny)
			if err != nil {
				t.Fatalf("Parse(%q, %q) failed: %v", c.layout, c.input, err)
			}
			if !got.Equal(c.want) {
				t.Errorf("Parse(%q, %q) = %v, want %v", c.layout, c.input, got, c.want)
			}
		})
	}
}

func TestParseTwoDigitYearPivot(t *testing.T) {
	utc := tz.UTC()
	cases := []struct {
		input string
		want  int
	}{
		{"69", 1969},
		{"99", 1999},
		{"00", 2000},
		{"68", 2068},
	}
	for _, c := range cases {
		got, err := Parse("%y", c.input, utc)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.input, err)
		}
		if y := utc.ToCivil(got).Year(); y != c.want {
			t.Errorf("Parse(%%y, %q) year = %d, want %d", c.input, y, c.want)
		}
	}
}

func TestParseCentury(t *testing.T) {
	utc := tz.UTC()
	got, err := Parse("%C%y", "1978", utc)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if y := utc.ToCivil(got).Year(); y != 1978 {
		t.Errorf("Parse(%%C%%y, 1978) year = %d, want 1978", y)
	}
}

// Formatting with %E*S and parsing back loses nothing.
func TestFractionRoundTrip(t *testing.T) {
	utc := tz.UTC()
	for _, ns := range []int{0, 1, 500000000, 123456789, 999999999} {
		in := time.Unix(1434371696, int64(ns)).UTC()
		s := Format(DefaultLayout, in, utc)
		got, err := Parse(DefaultLayout, s, utc)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if !got.Equal(in) {
			t.Errorf("round trip of %v via %q = %v", in, s, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	utc := tz.UTC()
	cases := []struct {
		name   string
		layout string
		input  string
	}{
		{"empty input", "%Y", ""},
		{"literal mismatch", "%Y-%m", "2015/06"},
		{"month out of range", "%Y-%m", "2015-13"},
		{"day out of range", "%Y-%m-%d", "2015-06-32"},
		{"bad AM/PM", "%I %p", "08 XX"},
		{"bad offset", "%Y %z", "2015 0400"},
		{"trailing input", "%Y-%m-%d", "2015-06-15T08:00"},
		{"unsupported specifier", "%Q", "anything"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.layout, c.input, utc)
			if err == nil {
				t.Fatalf("Parse(%q, %q) = nil error", c.layout, c.input)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error type = %T, want *ParseError", err)
			}
			if perr.Layout != c.layout || perr.Input != c.input {
				t.Errorf("ParseError = %+v, want layout %q and input %q", perr, c.layout, c.input)
			}
		})
	}
}

func TestParseErrorPos(t *testing.T) {
	_, err := Parse("%Y-%m-%d", "2015-06x15", tz.UTC())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if perr.Pos != 7 {
		t.Errorf("ParseError.Pos = %d, want 7", perr.Pos)
	}
}
