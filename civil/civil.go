// Package civil provides value types for civil time: human calendar and
// clock fields under the proleptic Gregorian calendar, independent of any
// time zone.
//
// There are six types, one per alignment: [Year], [Month], [Day], [Hour],
// [Minute] and [Second]. A value stores a fully normalized six-field tuple
// (year, month, day, hour, minute, second) with every field below its
// alignment pinned to its minimum: a Month always has day 1 and time
// 00:00:00, a Day always has time 00:00:00, and so on. Arithmetic operates
// on the aligned field, exactly and without intermediate rounding; the type
// system rejects differences between values of different alignments.
//
// The zero value of every type is the epoch, 1970-01-01 00:00:00.
package civil

import (
	"fmt"
	"time"

	"github.com/tzmath/go-civil/internal/calmath"
)

type align int

const (
	alignYear align = iota
	alignMonth
	alignDay
	alignHour
	alignMinute
	alignSecond
)

type (
	yearUnit   struct{}
	monthUnit  struct{}
	dayUnit    struct{}
	hourUnit   struct{}
	minuteUnit struct{}
	secondUnit struct{}
)

func (yearUnit) align() align   { return alignYear }
func (monthUnit) align() align  { return alignMonth }
func (dayUnit) align() align    { return alignDay }
func (hourUnit) align() align   { return alignHour }
func (minuteUnit) align() align { return alignMinute }
func (secondUnit) align() align { return alignSecond }

// Unit is the set of alignment tags. It is only useful as a type parameter
// constraint for code that is generic over all six civil time types.
type Unit interface {
	yearUnit | monthUnit | dayUnit | hourUnit | minuteUnit | secondUnit
	align() align
}

// Time is a civil time value aligned to the unit U. Use the aliases
// [Year], [Month], [Day], [Hour], [Minute] and [Second].
//
// Time values are immutable; all arithmetic returns new values.
type Time[U Unit] struct {
	// Fields are stored as offsets from the epoch value so that the zero
	// value is 1970-01-01 00:00:00.
	y          int64 // year - 1970
	m          int8  // month - 1, 0-11
	d          int8  // day - 1, 0-30
	hh, mm, ss int8
}

// The six civil time types.
type (
	Year   = Time[yearUnit]
	Month  = Time[monthUnit]
	Day    = Time[dayUnit]
	Hour   = Time[hourUnit]
	Minute = Time[minuteUnit]
	Second = Time[secondUnit]
)

func pack[U Unit](f calmath.Fields) Time[U] {
	var u U
	t := Time[U]{y: int64(f.Year) - 1970}
	if u.align() >= alignMonth {
		t.m = int8(f.Month - 1)
	}
	if u.align() >= alignDay {
		t.d = int8(f.Day - 1)
	}
	if u.align() >= alignHour {
		t.hh = int8(f.Hour)
	}
	if u.align() >= alignMinute {
		t.mm = int8(f.Minute)
	}
	if u.align() >= alignSecond {
		t.ss = int8(f.Second)
	}
	return t
}

func norm[U Unit](y, mo, d, hh, mm, ss int64) Time[U] {
	return pack[U](calmath.Norm(y, mo, d, hh, mm, ss))
}

// NewYear returns the civil year y.
func NewYear(y int) Year {
	return norm[yearUnit](int64(y), 1, 1, 0, 0, 0)
}

// NewMonth returns the civil month, normalizing out-of-range months into
// neighboring years.
func NewMonth(y int, m time.Month) Month {
	return norm[monthUnit](int64(y), int64(m), 1, 0, 0, 0)
}

// NewDay returns the civil day, normalizing out-of-range fields. For
// example, NewDay(2016, time.February, 30) is 2016-03-01.
func NewDay(y int, m time.Month, d int) Day {
	return norm[dayUnit](int64(y), int64(m), int64(d), 0, 0, 0)
}

// NewHour returns the civil hour, normalizing out-of-range fields.
func NewHour(y int, m time.Month, d, hh int) Hour {
	return norm[hourUnit](int64(y), int64(m), int64(d), int64(hh), 0, 0)
}

// NewMinute returns the civil minute, normalizing out-of-range fields.
func NewMinute(y int, m time.Month, d, hh, mm int) Minute {
	return norm[minuteUnit](int64(y), int64(m), int64(d), int64(hh), int64(mm), 0)
}

// NewSecond returns the civil second, normalizing out-of-range fields.
// Overflow and underflow carry exactly: NewSecond(2015, time.December, 31,
// 23, 59, 61) is 2016-01-01 00:00:01.
func NewSecond(y int, m time.Month, d, hh, mm, ss int) Second {
	return norm[secondUnit](int64(y), int64(m), int64(d), int64(hh), int64(mm), int64(ss))
}

// Year returns the year field.
func (t Time[U]) Year() int { return int(t.y + 1970) }

// Month returns the month field. It is time.January for values aligned to
// a year.
func (t Time[U]) Month() time.Month { return time.Month(t.m + 1) }

// Day returns the day-of-month field, 1 for superior alignments.
func (t Time[U]) Day() int { return int(t.d + 1) }

// Hour returns the hour field, 0 for superior alignments.
func (t Time[U]) Hour() int { return int(t.hh) }

// Minute returns the minute field, 0 for superior alignments.
func (t Time[U]) Minute() int { return int(t.mm) }

// Second returns the second field, 0 for superior alignments.
func (t Time[U]) Second() int { return int(t.ss) }

// YearOf discards everything below the year of t.
func YearOf[U Unit](t Time[U]) Year { return pack[yearUnit](fieldsOf(t)) }

// MonthOf discards everything below the month of t.
func MonthOf[U Unit](t Time[U]) Month { return pack[monthUnit](fieldsOf(t)) }

// DayOf discards the time of day of t.
func DayOf[U Unit](t Time[U]) Day { return pack[dayUnit](fieldsOf(t)) }

// HourOf discards the minute and second of t.
func HourOf[U Unit](t Time[U]) Hour { return pack[hourUnit](fieldsOf(t)) }

// MinuteOf discards the second of t.
func MinuteOf[U Unit](t Time[U]) Minute { return pack[minuteUnit](fieldsOf(t)) }

// SecondOf re-aligns t to a second. No precision is lost.
func SecondOf[U Unit](t Time[U]) Second { return pack[secondUnit](fieldsOf(t)) }

func fieldsOf[U Unit](t Time[U]) calmath.Fields {
	return calmath.Fields{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Add returns t shifted by n units of its alignment. The result is exact:
// adding one month to 2015-01-31 (as a Month) yields 2015-02.
func (t Time[U]) Add(n int64) Time[U] {
	var u U
	y, mo, d, hh, mm, ss := int64(t.Year()), int64(t.Month()), int64(t.Day()), int64(t.Hour()), int64(t.Minute()), int64(t.Second())
	switch u.align() {
	case alignYear:
		y += n
	case alignMonth:
		mo += n
	case alignDay:
		d += n
	case alignHour:
		hh += n
	case alignMinute:
		mm += n
	case alignSecond:
		ss += n
	}
	return norm[U](y, mo, d, hh, mm, ss)
}

// Next returns the value one alignment unit after t.
func (t Time[U]) Next() Time[U] { return t.Add(1) }

// Prev returns the value one alignment unit before t.
func (t Time[U]) Prev() Time[U] { return t.Add(-1) }

// Diff returns the number of alignment units between t and o, exactly:
// t == o.Add(t.Diff(o)). Differencing values of different alignments is a
// compile-time error.
func (t Time[U]) Diff(o Time[U]) int64 {
	var u U
	switch u.align() {
	case alignYear:
		return t.y - o.y
	case alignMonth:
		return (t.y-o.y)*12 + int64(t.m-o.m)
	case alignDay:
		return days(t) - days(o)
	case alignHour:
		return (days(t)-days(o))*24 + int64(t.hh-o.hh)
	case alignMinute:
		return (days(t)-days(o))*1440 + int64(t.hh-o.hh)*60 + int64(t.mm-o.mm)
	default:
		return (days(t)-days(o))*86400 + int64(t.hh-o.hh)*3600 + int64(t.mm-o.mm)*60 + int64(t.ss-o.ss)
	}
}

func days[U Unit](t Time[U]) int64 {
	return calmath.DaysFromCivil(t.Year(), t.Month(), t.Day())
}

// Equal reports whether t and o are the same value.
func (t Time[U]) Equal(o Time[U]) bool { return t == o }

// Compare orders two civil time values of any alignments by their full
// six-field tuples. It returns -1 if a is before b, 0 if the tuples are
// equal, and +1 if a is after b. Alignment itself does not participate:
// NewDay(2015, time.March, 8) and NewHour(2015, time.March, 8, 0) compare
// equal.
func Compare[A, B Unit](a Time[A], b Time[B]) int {
	at := [6]int64{a.y, int64(a.m), int64(a.d), int64(a.hh), int64(a.mm), int64(a.ss)}
	bt := [6]int64{b.y, int64(b.m), int64(b.d), int64(b.hh), int64(b.mm), int64(b.ss)}
	for i := range at {
		if at[i] != bt[i] {
			if at[i] < bt[i] {
				return -1
			}
			return +1
		}
	}
	return 0
}

// Before reports whether a is strictly before b in full-tuple order.
func Before[A, B Unit](a Time[A], b Time[B]) bool { return Compare(a, b) < 0 }

// After reports whether a is strictly after b in full-tuple order.
func After[A, B Unit](a Time[A], b Time[B]) bool { return Compare(a, b) > 0 }

// Weekday returns the day of the week of d.
func Weekday(d Day) time.Weekday {
	return calmath.Weekday(days(d))
}

// YearDay returns the ordinal day of the year of d, 1-365 (366 in leap
// years).
func YearDay(d Day) int {
	return calmath.YearDay(d.Year(), d.Month(), d.Day())
}

// NextWeekday returns the first day strictly after d that falls on w.
// The result is never d itself: asking for the next Sunday on a Sunday
// returns the Sunday a week later.
func NextWeekday(d Day, w time.Weekday) Day {
	n := int64(w-Weekday(d)+6)%7 + 1
	return d.Add(n)
}

// PrevWeekday returns the last day strictly before d that falls on w.
func PrevWeekday(d Day, w time.Weekday) Day {
	n := int64(Weekday(d)-w+6)%7 + 1
	return d.Add(-n)
}

// String renders the fields of t down to its alignment, in the style of
// "2015-03-08T02:30:00". Years are zero-padded to four digits and carry a
// sign when negative.
func (t Time[U]) String() string {
	var u U
	y := t.Year()
	sign := ""
	if y < 0 {
		sign, y = "-", -y
	}
	s := fmt.Sprintf("%s%04d", sign, y)
	if u.align() >= alignMonth {
		s += fmt.Sprintf("-%02d", int(t.Month()))
	}
	if u.align() >= alignDay {
		s += fmt.Sprintf("-%02d", t.Day())
	}
	if u.align() >= alignHour {
		s += fmt.Sprintf("T%02d", t.Hour())
	}
	if u.align() >= alignMinute {
		s += fmt.Sprintf(":%02d", t.Minute())
	}
	if u.align() >= alignSecond {
		s += fmt.Sprintf(":%02d", t.Second())
	}
	return s
}
