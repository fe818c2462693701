package tz

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	"github.com/tzmath/go-civil/internal/posixtz"
	"github.com/tzmath/go-civil/tzdb/oszone"
	"github.com/tzmath/go-civil/tzif"
)

// ErrUnknownZone is returned by Load when the source has no zone of the
// requested name.
var ErrUnknownZone = errors.New("unknown time zone")

// Source provides raw TZif data by zone name. Unknown zones are reported
// with an error satisfying errors.Is(err, fs.ErrNotExist).
type Source interface {
	Zone(name string) ([]byte, error)
}

// Load looks up a zone by IANA name, such as "America/New_York". Data is
// read from the source given by WithSource, defaulting to the operating
// system's zoneinfo database. "UTC", the empty string, and "Local" are
// resolved without consulting the source.
func Load(name string, opts ...Option) (*TimeZone, error) {
	switch name {
	case "", "UTC":
		return UTC(), nil
	case "Local":
		return Local(opts...), nil
	}
	o := buildOptions(opts)
	src := o.source
	if src == nil {
		src = oszone.Default
	}
	b, err := src.Zone(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	d, err := tzif.DecodeBytes(b)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return FromTZif(name, d, opts...)
}

// Local returns the system's local time zone, following tzset(3): an unset
// TZ environment variable means the zone behind /etc/localtime, an empty
// one means UTC, and otherwise TZ holds a zone name or a POSIX TZ string.
// A leading colon is ignored. If nothing resolves, Local falls back to UTC.
func Local(opts ...Option) *TimeZone {
	env, ok := os.LookupEnv("TZ")
	if !ok {
		if z, err := loadSystemLocal(opts); err == nil {
			return z
		}
		return UTC()
	}
	env = strings.TrimPrefix(env, ":")
	if env == "" || env == "UTC" {
		return UTC()
	}
	if z, err := Load(env, opts...); err == nil {
		return z
	}
	if z, err := fromPOSIX(env); err == nil {
		return z
	}
	return UTC()
}

func loadSystemLocal(opts []Option) (*TimeZone, error) {
	const localtime = "/etc/localtime"
	b, err := os.ReadFile(localtime)
	if err != nil {
		return nil, err
	}
	name := "Local"
	if target, err := os.Readlink(localtime); err == nil {
		if _, after, found := strings.Cut(target, "/zoneinfo/"); found {
			name = after
		}
	}
	d, err := tzif.DecodeBytes(b)
	if err != nil {
		return nil, err
	}
	return FromTZif(name, d, opts...)
}

// fromPOSIX builds a zone straight from a POSIX TZ string, for TZ values
// like "EST5EDT,M3.2.0,M11.1.0" that name no database entry.
func fromPOSIX(s string) (*TimeZone, error) {
	rule, err := posixtz.Parse(s)
	if err != nil {
		return nil, err
	}
	tab := []Transition{{When: math.MinInt64, Offset: rule.StdOffset, Abbr: rule.StdAbbr}}
	for _, x := range rule.Expand(1970, defaultExtendThrough) {
		tab = append(tab, Transition{When: x.When, Offset: x.Offset, DST: x.DST, Abbr: x.Abbr})
	}
	return &TimeZone{name: s, tab: tab}, nil
}
