// Command tzutil converts civil times between time zones, lists zone
// transitions, and classifies civil times as unique, skipped, or repeated.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzmath/go-civil/tz"
	"github.com/tzmath/go-civil/tzformat"
)

const civilLayout = "%Y-%m-%d %H:%M:%S"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tzutil",
		Short:         "Work with time zones and civil time",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newConvertCmd(), newTransitionsCmd(), newCheckCmd())
	return root
}

func newConvertCmd() *cobra.Command {
	var (
		from   string
		to     string
		layout string
	)
	cmd := &cobra.Command{
		Use:     "convert TIME",
		Short:   "Convert a civil time from one zone to another",
		Example: `  tzutil convert --from America/New_York --to Asia/Tehran "1978-12-30 12:01:00"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := tz.Load(from)
			if err != nil {
				return err
			}
			dst, err := tz.Load(to)
			if err != nil {
				return err
			}
			t, err := tzformat.Parse(layout, args[0], src)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tzformat.Format(layout+" %Z", t, dst))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "UTC", "zone the input is read in")
	cmd.Flags().StringVar(&to, "to", "Local", "zone the output is rendered in")
	cmd.Flags().StringVar(&layout, "layout", civilLayout, "strftime-style layout")
	return cmd
}

func newTransitionsCmd() *cobra.Command {
	var fromYear, toYear int
	cmd := &cobra.Command{
		Use:   "transitions ZONE",
		Short: "List the offset transitions of a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := tz.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tr := range z.Transitions() {
				if tr.When == math.MinInt64 {
					fmt.Fprintf(out, "%-25s %s %s%s\n", "(initial)", offsetString(tr.Offset), tr.Abbr, dstMark(tr.DST))
					continue
				}
				year := yearOf(tr)
				if year < fromYear || year > toYear {
					continue
				}
				stamp := tzformat.Format("%Y-%m-%dT%H:%M:%SZ", unixTime(tr.When), tz.UTC())
				fmt.Fprintf(out, "%-25s %s %s%s\n", stamp, offsetString(tr.Offset), tr.Abbr, dstMark(tr.DST))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&fromYear, "from-year", 1900, "first year to list")
	cmd.Flags().IntVar(&toYear, "to-year", 2040, "last year to list")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:     "check ZONE TIME",
		Short:   "Classify a civil time as unique, skipped, or repeated",
		Example: `  tzutil check America/New_York "2015-03-08 02:30:00"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			z, err := tz.Load(args[0])
			if err != nil {
				return err
			}
			// Parsing against UTC turns the input into bare civil fields.
			t, err := tzformat.Parse(layout, args[1], tz.UTC())
			if err != nil {
				return err
			}
			cl := z.LookupCivil(tz.UTC().ToCivil(t))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", cl.Kind)
			stamp := func(t time.Time) string { return tzformat.Format(tzformat.DefaultLayout, t, z) }
			switch cl.Kind {
			case tz.Skipped:
				fmt.Fprintf(out, "before the transition it would read %s\n", stamp(cl.Pre))
				fmt.Fprintf(out, "the transition happens at          %s\n", stamp(cl.Trans))
				fmt.Fprintf(out, "after the transition it would read %s\n", stamp(cl.Post))
			case tz.Repeated:
				fmt.Fprintf(out, "first occurrence  %s\n", stamp(cl.Pre))
				fmt.Fprintf(out, "transition at     %s\n", stamp(cl.Trans))
				fmt.Fprintf(out, "second occurrence %s\n", stamp(cl.Post))
			default:
				fmt.Fprintf(out, "occurs at %s\n", stamp(cl.Trans))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", civilLayout, "strftime-style layout")
	return cmd
}

func offsetString(off int) string {
	sign := "+"
	if off < 0 {
		sign, off = "-", -off
	}
	return fmt.Sprintf("%s%02d:%02d", sign, off/3600, off/60%60)
}

func dstMark(dst bool) string {
	if dst {
		return " dst"
	}
	return ""
}

func yearOf(tr tz.Transition) int {
	return tz.UTC().ToCivil(unixTime(tr.When)).Year()
}

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
