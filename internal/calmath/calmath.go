// Package calmath implements exact calendar arithmetic for the proleptic
// Gregorian calendar.
//
// Days are counted from the Unix epoch: day 0 is 1970-01-01. The conversion
// between (year, month, day) and the day count is closed-form arithmetic over
// 400-year eras. Every 4th year is a leap year, except centuries, except
// every 400th year. Leap seconds do not exist on this timeline.
package calmath

import "time"

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	daysPerEra = 146097 // days in one 400-year era

	// unixEpochDays shifts the era day count so that day 0 is 1970-01-01
	// instead of 0000-03-01, the start of the era the Unix epoch falls in.
	unixEpochDays = 719468
)

// Fields is a normalized civil field tuple.
// Month is 1-12, Day 1-31, Hour 0-23, Minute and Second 0-59.
type Fields struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// floorDiv returns the quotient of a/b rounded toward negative infinity.
// b must be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// floorMod returns a-floorDiv(a, b)*b, which is always in [0, b).
// b must be positive.
func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// DaysFromCivil returns the number of days from 1970-01-01 to the given
// date. The date does not need to be normalized beyond month being 1-12;
// day values outside the month are counted through into neighboring months.
func DaysFromCivil(year int, month time.Month, day int) int64 {
	y := int64(year)
	if month <= time.February {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400 // [0, 399]
	var mp int64       // months since March: Mar=0 .. Feb=11
	if month > time.February {
		mp = int64(month) - 3
	} else {
		mp = int64(month) + 9
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - unixEpochDays
}

// CivilFromDays is the exact inverse of DaysFromCivil for normalized dates.
func CivilFromDays(days int64) (year int, month time.Month, day int) {
	z := days + unixEpochDays
	era := floorDiv(z, daysPerEra)
	doe := z - era*daysPerEra // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), time.Month(m), int(d)
}

// SecondsFromCivil returns the number of seconds from 1970-01-01 00:00:00
// to the given normalized civil time, on a timeline without leap seconds.
func SecondsFromCivil(year int, month time.Month, day, hour, minute, second int) int64 {
	return DaysFromCivil(year, month, day)*SecondsPerDay +
		int64(hour)*SecondsPerHour + int64(minute)*SecondsPerMinute + int64(second)
}

// CivilFromSeconds is the exact inverse of SecondsFromCivil.
func CivilFromSeconds(seconds int64) Fields {
	days := floorDiv(seconds, SecondsPerDay)
	rem := floorMod(seconds, SecondsPerDay)
	y, m, d := CivilFromDays(days)
	return Fields{
		Year:   y,
		Month:  m,
		Day:    d,
		Hour:   int(rem / SecondsPerHour),
		Minute: int(rem / SecondsPerMinute % 60),
		Second: int(rem % 60),
	}
}

// Norm normalizes an arbitrary civil field tuple. Seconds carry into
// minutes, minutes into hours, hours into days, and months into years; the
// possibly out-of-range day is then resolved through the day count, never by
// stepping one unit at a time.
func Norm(year, month, day, hour, minute, second int64) Fields {
	carry := floorDiv(second, 60)
	second = floorMod(second, 60)
	minute += carry
	carry = floorDiv(minute, 60)
	minute = floorMod(minute, 60)
	hour += carry
	carry = floorDiv(hour, 24) // extra days
	hour = floorMod(hour, 24)

	year += floorDiv(month-1, 12)
	month = floorMod(month-1, 12) + 1

	days := DaysFromCivil(int(year), time.Month(month), 1) + (day - 1) + carry
	y, m, d := CivilFromDays(days)
	return Fields{
		Year:   y,
		Month:  m,
		Day:    d,
		Hour:   int(hour),
		Minute: int(minute),
		Second: int(second),
	}
}

// Weekday returns the day of the week of the given day count.
// Day 0, 1970-01-01, is a Thursday.
func Weekday(days int64) time.Weekday {
	return time.Weekday(floorMod(days+4, 7))
}

// YearDay returns the ordinal day of the year of the given normalized date,
// 1 through 365 (366 in leap years).
func YearDay(year int, month time.Month, day int) int {
	return int(DaysFromCivil(year, month, day) - DaysFromCivil(year, time.January, 1) + 1)
}

// IsLeapYear reports whether the year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
