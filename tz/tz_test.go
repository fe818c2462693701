package tz

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tzmath/go-civil/civil"
	"github.com/tzmath/go-civil/tzdb/oszone"
	"github.com/tzmath/go-civil/tzif"
)

// newYork is an America/New_York-shaped fixture covering the 2015 and 2016
// DST cycles. The first entry extends back to the beginning of time.
func newYork(t *testing.T) *TimeZone {
	t.Helper()
	z, err := FromTransitions("America/New_York", []Transition{
		{When: math.MinInt64, Offset: -5 * 3600, Abbr: "EST"},
		{When: 1425798000, Offset: -4 * 3600, DST: true, Abbr: "EDT"}, // 2015-03-08 07:00Z
		{When: 1446357600, Offset: -5 * 3600, Abbr: "EST"},            // 2015-11-01 06:00Z
		{When: 1457852400, Offset: -4 * 3600, DST: true, Abbr: "EDT"}, // 2016-03-13 07:00Z
		{When: 1478412000, Offset: -5 * 3600, Abbr: "EST"},            // 2016-11-06 06:00Z
	})
	if err != nil {
		t.Fatalf("FromTransitions() failed: %v", err)
	}
	return z
}

// tehran covers Iran's 1977 move to +04, the 1978 DST excursion to +05,
// and the 1979 return to +0330.
func tehran(t *testing.T) *TimeZone {
	t.Helper()
	z, err := FromTransitions("Asia/Tehran", []Transition{
		{When: math.MinInt64, Offset: 3*3600 + 30*60, Abbr: "+0330"},
		{When: 247177800, Offset: 4 * 3600, Abbr: "+04"},            // 1977-11-01 00:00 +0330
		{When: 259272000, Offset: 5 * 3600, DST: true, Abbr: "+05"}, // 1978-03-21 00:00 +04
		{When: 277758000, Offset: 4 * 3600, Abbr: "+04"},            // 1978-10-21 00:00 +05
		{When: 283982400, Offset: 3*3600 + 30*60, Abbr: "+0330"},    // 1979-01-01 00:00 +04
	})
	if err != nil {
		t.Fatalf("FromTransitions() failed: %v", err)
	}
	return z
}

func TestLookupUTC(t *testing.T) {
	var zero TimeZone
	for _, z := range []*TimeZone{nil, &zero, UTC()} {
		got := z.Lookup(time.Unix(0, 0))
		want := AbsoluteLookup{CS: civil.NewSecond(1970, time.January, 1, 0, 0, 0), Abbr: "UTC"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(epoch) mismatch (-want +got):\n%s", diff)
		}
		if name := z.Name(); name != "UTC" {
			t.Errorf("Name() = %q, want UTC", name)
		}
	}
}

func TestLookupNewYork(t *testing.T) {
	z := newYork(t)
	cases := []struct {
		name string
		unix int64
		want AbsoluteLookup
	}{
		{
			name: "last second of EST",
			unix: 1425797999, // 2015-03-08 06:59:59Z
			want: AbsoluteLookup{CS: civil.NewSecond(2015, time.March, 8, 1, 59, 59), Offset: -5 * 3600, Abbr: "EST"},
		},
		{
			name: "first second of EDT",
			unix: 1425798000,
			want: AbsoluteLookup{CS: civil.NewSecond(2015, time.March, 8, 3, 0, 0), Offset: -4 * 3600, DST: true, Abbr: "EDT"},
		},
		{
			name: "before all recorded transitions",
			unix: 0,
			want: AbsoluteLookup{CS: civil.NewSecond(1969, time.December, 31, 19, 0, 0), Offset: -5 * 3600, Abbr: "EST"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := z.Lookup(time.Unix(c.unix, 0))
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupCivilUnique(t *testing.T) {
	z := newYork(t)
	got := z.LookupCivil(civil.NewSecond(2015, time.June, 1, 12, 0, 0))
	want := time.Date(2015, time.June, 1, 16, 0, 0, 0, time.UTC)
	if got.Kind != Unique {
		t.Fatalf("Kind = %v, want unique", got.Kind)
	}
	if !got.Pre.Equal(want) || !got.Trans.Equal(want) || !got.Post.Equal(want) {
		t.Errorf("LookupCivil() = %v, want all instants %v", got, want)
	}
}

func TestLookupCivilSkipped(t *testing.T) {
	z := newYork(t)
	// 02:30 on 2015-03-08 never happened: the clock jumped from 02:00 EST
	// to 03:00 EDT.
	got := z.LookupCivil(civil.NewSecond(2015, time.March, 8, 2, 30, 0))
	want := CivilLookup{
		Kind:  Skipped,
		Pre:   time.Date(2015, time.March, 8, 7, 30, 0, 0, time.UTC),
		Trans: time.Date(2015, time.March, 8, 7, 0, 0, 0, time.UTC),
		Post:  time.Date(2015, time.March, 8, 6, 30, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LookupCivil() mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupCivilRepeated(t *testing.T) {
	z := newYork(t)
	// 01:30 on 2015-11-01 happened twice: once in EDT, once in EST.
	got := z.LookupCivil(civil.NewSecond(2015, time.November, 1, 1, 30, 0))
	want := CivilLookup{
		Kind:  Repeated,
		Pre:   time.Date(2015, time.November, 1, 5, 30, 0, 0, time.UTC),
		Trans: time.Date(2015, time.November, 1, 6, 0, 0, 0, time.UTC),
		Post:  time.Date(2015, time.November, 1, 6, 30, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LookupCivil() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromCivil(t *testing.T) {
	z := newYork(t)
	cases := []struct {
		name string
		cs   civil.Second
		want time.Time
	}{
		{
			name: "unique",
			cs:   civil.NewSecond(2015, time.June, 1, 12, 0, 0),
			want: time.Date(2015, time.June, 1, 16, 0, 0, 0, time.UTC),
		},
		{
			name: "skipped maps to the transition",
			cs:   civil.NewSecond(2015, time.March, 8, 2, 30, 0),
			want: time.Date(2015, time.March, 8, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "repeated maps to the earlier occurrence",
			cs:   civil.NewSecond(2015, time.November, 1, 1, 30, 0),
			want: time.Date(2015, time.November, 1, 5, 30, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := z.FromCivil(c.cs); !got.Equal(c.want) {
				t.Errorf("FromCivil(%v) = %v, want %v", c.cs, got, c.want)
			}
		})
	}
}

// FromCivil never moves backward as the civil input grows, even across
// skipped and repeated ranges.
func TestFromCivilMonotonic(t *testing.T) {
	z := newYork(t)
	cs := civil.NewSecond(2015, time.March, 7, 0, 0, 0)
	end := civil.NewSecond(2015, time.November, 2, 0, 0, 0)
	prev := z.FromCivil(cs)
	for civil.Before(cs, end) {
		cs = cs.Add(600) // ten-minute steps
		got := z.FromCivil(cs)
		if got.Before(prev) {
			t.Fatalf("FromCivil(%v) = %v, before previous result %v", cs, got, prev)
		}
		prev = got
	}
}

func TestRoundTrip(t *testing.T) {
	z := newYork(t)
	for _, unix := range []int64{0, 1425797999, 1425798000, 1440000000, 1446357599, 1446361200} {
		in := time.Unix(unix, 0).UTC()
		cl := z.LookupCivil(z.ToCivil(in))
		var back time.Time
		switch cl.Kind {
		case Unique:
			back = cl.Trans
		case Repeated:
			// Both occurrences share the civil time; the instant must be
			// one of them.
			if !in.Equal(cl.Pre) && !in.Equal(cl.Post) {
				t.Errorf("instant %v: repeated lookup gives %v / %v, neither matches", in, cl.Pre, cl.Post)
			}
			continue
		default:
			t.Errorf("instant %v: civil time of an actual instant classified %v", in, cl.Kind)
			continue
		}
		if !back.Equal(in) {
			t.Errorf("round trip of %v = %v", in, back)
		}
	}
}

// A 14h44m flight leaving New York at 12:01 on 1978-12-30 lands in Tehran
// at 11:45 local time on 1978-12-31, with Iran on +04.
func TestFlightArithmetic(t *testing.T) {
	ny, ir := newYork(t), tehran(t)

	dep := ny.FromCivil(civil.NewSecond(1978, time.December, 30, 12, 1, 0))
	arr := dep.Add(14*time.Hour + 44*time.Minute)

	got := ir.Lookup(arr)
	want := AbsoluteLookup{
		CS:     civil.NewSecond(1978, time.December, 31, 11, 45, 0),
		Offset: 4 * 3600,
		Abbr:   "+04",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup(arrival) mismatch (-want +got):\n%s", diff)
	}
}

func TestFixedZone(t *testing.T) {
	z := FixedZone("+0530", 5*3600+30*60)
	got := z.Lookup(time.Unix(0, 0))
	want := AbsoluteLookup{CS: civil.NewSecond(1970, time.January, 1, 5, 30, 0), Offset: 5*3600 + 30*60, Abbr: "+0530"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromTransitionsErrors(t *testing.T) {
	if _, err := FromTransitions("x", nil); err == nil {
		t.Error("FromTransitions(empty) = nil error")
	}
	_, err := FromTransitions("x", []Transition{
		{When: 100, Offset: 0},
		{When: 100, Offset: 3600},
	})
	if err == nil {
		t.Error("FromTransitions(unsorted) = nil error")
	}
}

// nyTZif is TZif data with one recorded DST cycle and a footer rule.
func nyTZif() tzif.Data {
	return tzif.Data{
		Version:         tzif.V2,
		TransitionTimes: []int64{1425798000, 1446357600},
		TransitionTypes: []uint8{1, 0},
		ZoneTypes: []tzif.ZoneType{
			{Offset: -5 * 3600, DST: false, DesigIdx: 0},
			{Offset: -4 * 3600, DST: true, DesigIdx: 4},
		},
		Designations: []byte("EST\x00EDT\x00"),
		TZString:     "EST5EDT,M3.2.0,M11.1.0",
	}
}

func TestFromTZif(t *testing.T) {
	z, err := FromTZif("America/New_York", nyTZif())
	if err != nil {
		t.Fatalf("FromTZif() failed: %v", err)
	}

	// The initial entry comes from the first non-DST zone type.
	tab := z.Transitions()
	want := Transition{When: math.MinInt64, Offset: -5 * 3600, Abbr: "EST"}
	if diff := cmp.Diff(want, tab[0]); diff != "" {
		t.Errorf("initial entry mismatch (-want +got):\n%s", diff)
	}

	// The footer rule supplies transitions beyond the recorded ones:
	// summer 2016 is EDT.
	got := z.Lookup(time.Date(2016, time.July, 1, 12, 0, 0, 0, time.UTC))
	if got.Abbr != "EDT" || !got.DST {
		t.Errorf("Lookup(2016-07-01) = %+v, want EDT", got)
	}
	// And the 2016 spring-forward lands where the rule says.
	cl := z.LookupCivil(civil.NewSecond(2016, time.March, 13, 2, 30, 0))
	if cl.Kind != Skipped {
		t.Errorf("LookupCivil(2016-03-13 02:30) kind = %v, want skipped", cl.Kind)
	}
}

func TestFromTZifRepeatLast(t *testing.T) {
	z, err := FromTZif("America/New_York", nyTZif(), WithExtend(ExtendRepeatLast))
	if err != nil {
		t.Fatalf("FromTZif() failed: %v", err)
	}
	// The last recorded transition is to EST; without footer expansion it
	// persists through summer 2016.
	got := z.Lookup(time.Date(2016, time.July, 1, 12, 0, 0, 0, time.UTC))
	if got.Abbr != "EST" || got.DST {
		t.Errorf("Lookup(2016-07-01) = %+v, want EST", got)
	}
}

func TestFromTZifInvalid(t *testing.T) {
	d := nyTZif()
	d.ZoneTypes = nil
	if _, err := FromTZif("x", d); err == nil {
		t.Error("FromTZif(invalid data) = nil error")
	}
}

func TestLoad(t *testing.T) {
	b, err := tzif.EncodeBytes(nyTZif())
	if err != nil {
		t.Fatalf("EncodeBytes() failed: %v", err)
	}
	src := oszone.Map{"America/New_York": b}

	z, err := Load("America/New_York", WithSource(src))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := z.Lookup(time.Unix(1425798000, 0)); got.Abbr != "EDT" {
		t.Errorf("Lookup() abbr = %q, want EDT", got.Abbr)
	}

	if _, err := Load("Nowhere/Special", WithSource(src)); !errors.Is(err, ErrUnknownZone) {
		t.Errorf("Load(unknown) error = %v, want ErrUnknownZone", err)
	}

	for _, name := range []string{"", "UTC"} {
		z, err := Load(name, WithSource(src))
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", name, err)
		}
		if z != UTC() {
			t.Errorf("Load(%q) = %v, want the UTC zone", name, z)
		}
	}
}

func TestLocalFromEnv(t *testing.T) {
	t.Setenv("TZ", "")
	if z := Local(); z.Name() != "UTC" {
		t.Errorf("Local() with empty TZ = %q, want UTC", z.Name())
	}

	t.Setenv("TZ", "EST5EDT,M3.2.0,M11.1.0")
	z := Local(WithSource(oszone.Map{}))
	got := z.Lookup(time.Date(2015, time.July, 1, 12, 0, 0, 0, time.UTC))
	if got.Abbr != "EDT" || got.Offset != -4*3600 {
		t.Errorf("Lookup() = %+v, want EDT -0400", got)
	}
}
