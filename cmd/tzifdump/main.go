// Command tzifdump prints the decoded content of a TZif file. Given two
// files, it prints the difference between them instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tzmath/go-civil/tz"
	"github.com/tzmath/go-civil/tzformat"
	"github.com/tzmath/go-civil/tzif"
)

var (
	validateFlag = flag.Bool("validate", false, "Check the structural invariants of RFC 8536")
	civilFlag    = flag.Bool("civil", false, "Print transition times as UTC civil time")
)

func main() {
	flag.Parse()
	args := flag.Args()
	switch len(args) {
	case 1:
		dump(read(args[0]))
	case 2:
		diff(read(args[0]), read(args[1]))
	default:
		fmt.Println("Usage: tzifdump [flags] <tzif file> [<tzif file>]")
		os.Exit(1)
	}
}

func read(path string) tzif.Data {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("reading file:", err)
		os.Exit(1)
	}
	d, err := tzif.DecodeBytes(b)
	if err != nil {
		fmt.Println("decoding:", err)
		os.Exit(1)
	}
	if *validateFlag {
		if err := tzif.Validate(d); err != nil {
			fmt.Println("validating:", err)
			os.Exit(1)
		}
	}
	return d
}

func dump(d tzif.Data) {
	fmt.Println("version =", d.Version)
	fmt.Printf("TransitionTimes (%d) = %v\n", len(d.TransitionTimes), times(d.TransitionTimes))
	fmt.Printf("TransitionTypes (%d) = %v\n", len(d.TransitionTypes), d.TransitionTypes)
	fmt.Printf("ZoneTypes (%d) = %+v\n", len(d.ZoneTypes), d.ZoneTypes)
	fmt.Printf("Designations (%d) = %v\n", len(d.Designations), strings.Split(strings.TrimSuffix(string(d.Designations), "\x00"), "\x00"))
	fmt.Printf("LeapOccur (%d) = %v\n", len(d.LeapOccur), d.LeapOccur)
	fmt.Printf("LeapCorr (%d) = %v\n", len(d.LeapCorr), d.LeapCorr)
	fmt.Printf("StdWall (%d) = %v\n", len(d.StdWall), d.StdWall)
	fmt.Printf("UTLocal (%d) = %v\n", len(d.UTLocal), d.UTLocal)
	fmt.Println("TZString =", d.TZString)
}

// times renders transition times either raw or as UTC civil timestamps.
func times(ts []int64) any {
	if !*civilFlag {
		return ts
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = tzformat.Format("%Y-%m-%dT%H:%M:%SZ", unixTime(t), tz.UTC())
	}
	return out
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func diff(a, b tzif.Data) {
	d := cmp.Diff(a, b)
	if d == "" {
		fmt.Println("equal")
		return
	}
	fmt.Println(d)
	os.Exit(2)
}
