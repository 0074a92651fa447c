package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nyiyui.ca/hato/shingo/snapshot"
	"nyiyui.ca/hato/shingo/tal/interlock"
	"nyiyui.ca/hato/shingo/tal/layout"
)

var routeCmd = &cobra.Command{
	Use:   "route <train> <from> <direction> <to>",
	Short: "Reserve a route for a train on the saved state",
	Long: `Finds the shortest route from section <from>, travelling in <direction>, to section <to>
and reserves it for <train>. Sections are given by comment or index; trains by configured name or id.
The saved state is updated if the route is granted.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, il, err := load()
		if err != nil {
			return err
		}
		train, err := c.LookupTrain(args[0])
		if err != nil {
			return err
		}
		y := il.Topology()
		from, err := parseSection(y, args[1])
		if err != nil {
			return err
		}
		dir, err := strconv.Atoi(args[2])
		if err != nil || (dir != 0 && dir != 1) {
			return fmt.Errorf("invalid direction %q", args[2])
		}
		to, err := parseSection(y, args[3])
		if err != nil {
			return err
		}

		st, err := snapshot.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := restore(st, il); err != nil {
			return err
		}
		route, err := il.RequestRoute(train, layout.Step{Section: from, Direction: dir}, to)
		var denied *interlock.DeniedError
		if errors.As(err, &denied) {
			return fmt.Errorf("route denied at section %s", sectionName(y, denied.Section))
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range route {
			fmt.Fprintf(out, "%s/%d\n", sectionName(y, e.Section), e.Direction)
		}
		return st.Save(snapshot.Capture(il))
	},
}
