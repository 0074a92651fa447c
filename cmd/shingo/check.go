package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nyiyui.ca/hato/shingo/tal/signal"
)

var checkVerbose bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build the configured topology and report what was built",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, il, err := load()
		if err != nil {
			return err
		}
		if err := il.Sections.CheckAlignment(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d sections, %d signals\n", len(il.Sections.Sections), len(il.Signals))
		if !checkVerbose {
			return nil
		}
		y := il.Topology()
		for _, o := range il.Signals {
			next, _ := il.NextSignal(o.Index, signal.FunctionNormal)
			fmt.Fprintf(out, "%s\tsection %s/%d at %g\titems %v\tnext %d\tfixed %t\tfacing %t\n",
				o, sectionName(y, o.Section), o.Direction, o.Offset, o.TrackItems, next, o.FixedRoute, o.Facing)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "list every signal")
}
