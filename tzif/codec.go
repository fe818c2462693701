package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// All multi-octet values are stored in network octet order with two's
// complement signed integers, per RFC 8536 section 2.
var order = binary.BigEndian

// header is the fixed-size part preceding each data block.
type header struct {
	Version  Version
	Reserved [15]byte
	Isutcnt  uint32
	Isstdcnt uint32
	Leapcnt  uint32
	Timecnt  uint32
	Typecnt  uint32
	Charcnt  uint32
}

func readHeader(r io.Reader) (header, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return header{}, fmt.Errorf("reading magic: %w", err)
	}
	if m != magic {
		return header{}, fmt.Errorf("invalid magic: %v", m)
	}
	var h header
	if err := binary.Read(r, order, &h); err != nil {
		return header{}, fmt.Errorf("reading header: %w", err)
	}
	return h, nil
}

func (h header) write(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// timeSize is the octet width of a transition or leap-second time in the
// data block following h.
func (h header) timeSize(wide bool) int {
	if wide {
		return 8
	}
	return 4
}

// blockSize is the total octet length of the data block following h.
func (h header) blockSize(wide bool) int64 {
	ts := int64(h.timeSize(wide))
	return int64(h.Timecnt)*(ts+1) +
		int64(h.Typecnt)*6 +
		int64(h.Charcnt) +
		int64(h.Leapcnt)*(ts+4) +
		int64(h.Isstdcnt) +
		int64(h.Isutcnt)
}

// Decode reads a TZif file. For version 2+ files the 32-bit block is
// skipped and the returned Data reflects the 64-bit block and the footer;
// for version 1 files the 32-bit times are widened.
func Decode(r io.Reader) (Data, error) {
	h, err := readHeader(r)
	if err != nil {
		return Data{}, fmt.Errorf("v1 header: %w", err)
	}
	d := Data{Version: h.Version}

	if h.Version == V1 {
		if err := readBlock(r, h, false, &d); err != nil {
			return Data{}, fmt.Errorf("v1 data block: %w", err)
		}
		return d, nil
	}

	// Version 2+: the v1 block is present for compatibility only.
	if err := skip(r, h.blockSize(false)); err != nil {
		return Data{}, fmt.Errorf("skipping v1 data block: %w", err)
	}
	h2, err := readHeader(r)
	if err != nil {
		return Data{}, fmt.Errorf("v2 header: %w", err)
	}
	if h2.Version != h.Version {
		return Data{}, fmt.Errorf("inconsistent version: v1 header = %v, v2 header = %v", h.Version, h2.Version)
	}
	if err := readBlock(r, h2, true, &d); err != nil {
		return Data{}, fmt.Errorf("v2 data block: %w", err)
	}
	d.TZString, err = readFooter(r)
	if err != nil {
		return Data{}, fmt.Errorf("footer: %w", err)
	}
	return d, nil
}

func skip(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

func readBlock(r io.Reader, h header, wide bool, d *Data) error {
	if h.Timecnt > 0 {
		d.TransitionTimes = make([]int64, h.Timecnt)
		if err := readTimes(r, wide, d.TransitionTimes); err != nil {
			return fmt.Errorf("reading transition times: %w", err)
		}
		d.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, order, &d.TransitionTypes); err != nil {
			return fmt.Errorf("reading transition types: %w", err)
		}
	}
	d.ZoneTypes = make([]ZoneType, h.Typecnt)
	for i := range d.ZoneTypes {
		if err := binary.Read(r, order, &d.ZoneTypes[i]); err != nil {
			return fmt.Errorf("reading zone type record %d: %w", i, err)
		}
	}
	if h.Charcnt > 0 {
		d.Designations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, d.Designations); err != nil {
			return fmt.Errorf("reading designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		d.LeapOccur = make([]int64, h.Leapcnt)
		d.LeapCorr = make([]int32, h.Leapcnt)
		for i := range d.LeapOccur {
			occ := make([]int64, 1)
			if err := readTimes(r, wide, occ); err != nil {
				return fmt.Errorf("reading leap second record %d: %w", i, err)
			}
			d.LeapOccur[i] = occ[0]
			if err := binary.Read(r, order, &d.LeapCorr[i]); err != nil {
				return fmt.Errorf("reading leap second record %d: %w", i, err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		d.StdWall = make([]bool, h.Isstdcnt)
		if err := binary.Read(r, order, &d.StdWall); err != nil {
			return fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		d.UTLocal = make([]bool, h.Isutcnt)
		if err := binary.Read(r, order, &d.UTLocal); err != nil {
			return fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return nil
}

func readTimes(r io.Reader, wide bool, out []int64) error {
	if wide {
		return binary.Read(r, order, &out)
	}
	narrow := make([]int32, len(out))
	if err := binary.Read(r, order, &narrow); err != nil {
		return err
	}
	for i, t := range narrow {
		out[i] = int64(t)
	}
	return nil
}

const newline = byte(0x0A)

// readFooter reads the newline-delimited TZ string.
func readFooter(r io.Reader) (string, error) {
	br := byteReaderFor(r)
	b, err := br.ReadByte()
	if err != nil {
		return "", fmt.Errorf("reading opening newline: %w", err)
	}
	if b != newline {
		return "", fmt.Errorf("expected newline, got %#x", b)
	}
	var s []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", fmt.Errorf("reading TZ string: %w", err)
		}
		if b == newline {
			return string(s), nil
		}
		s = append(s, b)
	}
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func (o oneByteReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(o.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func byteReaderFor(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return oneByteReader{r}
}

// Encode writes d as a TZif file. For version 2+ data a minimal version 1
// block is emitted first, holding only the zone types and designations, as
// required by RFC 8536 section 3.2.
func Encode(w io.Writer, d Data) error {
	if d.Version == V1 {
		h := deriveHeader(d, V1)
		if err := h.write(w); err != nil {
			return fmt.Errorf("write v1 header: %w", err)
		}
		if err := writeBlock(w, d, false); err != nil {
			return fmt.Errorf("write v1 data block: %w", err)
		}
		return nil
	}

	v1 := Data{
		Version:      d.Version,
		ZoneTypes:    d.ZoneTypes,
		Designations: d.Designations,
	}
	h1 := deriveHeader(v1, d.Version)
	if err := h1.write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := writeBlock(w, v1, false); err != nil {
		return fmt.Errorf("write v1 data block: %w", err)
	}

	h2 := deriveHeader(d, d.Version)
	if err := h2.write(w); err != nil {
		return fmt.Errorf("write v2 header: %w", err)
	}
	if err := writeBlock(w, d, true); err != nil {
		return fmt.Errorf("write v2 data block: %w", err)
	}
	if _, err := w.Write([]byte{newline}); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	if _, err := io.WriteString(w, d.TZString); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	if _, err := w.Write([]byte{newline}); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

func deriveHeader(d Data, v Version) header {
	return header{
		Version:  v,
		Isutcnt:  uint32(len(d.UTLocal)),
		Isstdcnt: uint32(len(d.StdWall)),
		Leapcnt:  uint32(len(d.LeapOccur)),
		Timecnt:  uint32(len(d.TransitionTimes)),
		Typecnt:  uint32(len(d.ZoneTypes)),
		Charcnt:  uint32(len(d.Designations)),
	}
}

func writeBlock(w io.Writer, d Data, wide bool) error {
	if err := writeTimes(w, wide, d.TransitionTimes); err != nil {
		return err
	}
	if err := binary.Write(w, order, d.TransitionTypes); err != nil {
		return err
	}
	for _, zt := range d.ZoneTypes {
		if err := binary.Write(w, order, zt); err != nil {
			return err
		}
	}
	if _, err := w.Write(d.Designations); err != nil {
		return err
	}
	for i := range d.LeapOccur {
		if err := writeTimes(w, wide, d.LeapOccur[i:i+1]); err != nil {
			return err
		}
		if err := binary.Write(w, order, d.LeapCorr[i]); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, d.StdWall); err != nil {
		return err
	}
	return binary.Write(w, order, d.UTLocal)
}

func writeTimes(w io.Writer, wide bool, times []int64) error {
	if wide {
		return binary.Write(w, order, times)
	}
	narrow := make([]int32, len(times))
	for i, t := range times {
		narrow[i] = clamp32(t)
	}
	return binary.Write(w, order, narrow)
}

// clamp32 saturates a 64-bit time for the 32-bit block.
func clamp32(t int64) int32 {
	const (
		min = -1 << 31
		max = 1<<31 - 1
	)
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return int32(t)
}

// EncodeBytes is a convenience wrapper around Encode.
func EncodeBytes(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes is a convenience wrapper around Decode.
func DecodeBytes(b []byte) (Data, error) {
	return Decode(bytes.NewReader(b))
}
