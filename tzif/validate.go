package tzif

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants RFC 8536 imposes on decoded
// data. It reports all violations, joined into a single error.
func Validate(d Data) error {
	var errs []error

	if len(d.ZoneTypes) == 0 {
		errs = append(errs, errors.New("typecnt must not be zero"))
	}
	if len(d.Designations) == 0 {
		errs = append(errs, errors.New("charcnt must not be zero"))
	} else if d.Designations[len(d.Designations)-1] != 0 {
		errs = append(errs, errors.New("designations missing trailing NUL"))
	}

	if times, types := len(d.TransitionTimes), len(d.TransitionTypes); times != types {
		errs = append(errs, fmt.Errorf("inconsistent transitions: %d times, %d types", times, types))
	}
	for i := 1; i < len(d.TransitionTimes); i++ {
		if d.TransitionTimes[i] <= d.TransitionTimes[i-1] {
			errs = append(errs, fmt.Errorf("transition times not strictly ascending at index %d: %d then %d", i, d.TransitionTimes[i-1], d.TransitionTimes[i]))
		}
	}
	for i, ti := range d.TransitionTypes {
		if int(ti) >= len(d.ZoneTypes) {
			errs = append(errs, fmt.Errorf("transition %d references zone type %d, have %d", i, ti, len(d.ZoneTypes)))
		}
	}
	for i, zt := range d.ZoneTypes {
		if _, err := d.Designation(zt); err != nil {
			errs = append(errs, fmt.Errorf("zone type %d: %w", i, err))
		}
	}

	if n := len(d.StdWall); n != 0 && n != len(d.ZoneTypes) {
		errs = append(errs, fmt.Errorf("isstdcnt (%d) must be 0 or equal to typecnt (%d)", n, len(d.ZoneTypes)))
	}
	if n := len(d.UTLocal); n != 0 && n != len(d.ZoneTypes) {
		errs = append(errs, fmt.Errorf("isutcnt (%d) must be 0 or equal to typecnt (%d)", n, len(d.ZoneTypes)))
	}
	if len(d.LeapOccur) != len(d.LeapCorr) {
		errs = append(errs, fmt.Errorf("inconsistent leap second records: %d times, %d corrections", len(d.LeapOccur), len(d.LeapCorr)))
	}

	return errors.Join(errs...)
}
