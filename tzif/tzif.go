// Package tzif reads and writes the TZif binary format specified by RFC
// 8536, the format of compiled time zone files as found under
// /usr/share/zoneinfo.
// https://datatracker.ietf.org/doc/html/rfc8536
package tzif

import (
	"fmt"
	"strings"
)

// Version identifies the version of a TZif file. Version 1 files carry
// 32-bit transition times; version 2 and up add a second data block with
// 64-bit times and a footer holding a TZ string.
type Version byte

const (
	// V1 is a version 1 file: only the 32-bit header and data block.
	V1 Version = 0x00
	// V2 adds a 64-bit data block and a footer with a POSIX TZ string.
	V2 Version = '2'
	// V3 allows TZ string extensions from RFC 8536 section 3.3.1 in the
	// footer.
	V3 Version = '3'
	// V4 is specified by the tzfile(5) man page and refines the meaning
	// of leap-second records. The layout is that of V2.
	V4 Version = '4'
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	case V3:
		return "V3"
	case V4:
		return "V4"
	default:
		return fmt.Sprintf("<undefined version (%#x)>", byte(v))
	}
}

// magic is the four-octet sequence identifying a TZif file.
var magic = [4]byte{'T', 'Z', 'i', 'f'}

// ZoneType is a local time type record: one (offset, DST, designation)
// combination a zone switches between.
type ZoneType struct {
	// Offset is the number of seconds to add to UT to determine local
	// time.
	Offset int32
	// DST reports whether the type is daylight saving time.
	DST bool
	// DesigIdx is the byte index of the type's NUL-terminated designation
	// string inside the designations block.
	DesigIdx uint8
}

// Data is the decoded content of a TZif file, with transition times widened
// to 64 bits regardless of the version they were read from.
type Data struct {
	Version Version

	// TransitionTimes holds the Unix times at which the effective zone
	// type changes, in strictly ascending order.
	TransitionTimes []int64
	// TransitionTypes holds, per transition, the index into ZoneTypes of
	// the type that takes effect.
	TransitionTypes []uint8
	// ZoneTypes holds the local time type records. Never empty in a
	// valid file.
	ZoneTypes []ZoneType
	// Designations is the concatenation of NUL-terminated designation
	// strings referenced by ZoneTypes.
	Designations []byte
	// LeapOccur and LeapCorr hold the leap-second records: the Unix time
	// of each correction and the accumulated correction in effect from
	// it. They are parallel slices.
	LeapOccur []int64
	LeapCorr  []int32
	// StdWall and UTLocal are the standard/wall and UT/local indicators.
	// Either empty or one per zone type.
	StdWall []bool
	UTLocal []bool

	// TZString is the footer rule describing local time after the last
	// transition. Empty for V1 files and for files without a rule.
	TZString string
}

// Designation returns the designation string of the given zone type.
func (d Data) Designation(t ZoneType) (string, error) {
	i := int(t.DesigIdx)
	if i >= len(d.Designations) {
		return "", fmt.Errorf("designation index %d out of range (%d bytes)", i, len(d.Designations))
	}
	rest := string(d.Designations[i:])
	j := strings.IndexByte(rest, 0)
	if j < 0 {
		return "", fmt.Errorf("designation at index %d is not NUL-terminated", i)
	}
	return rest[:j], nil
}
