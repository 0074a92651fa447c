package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nyiyui.ca/hato/shingo/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the saved interlocking state",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the state of a freshly built interlocking, discarding the saved state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, il, err := load()
		if err != nil {
			return err
		}
		st, err := snapshot.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Save(snapshot.Capture(il))
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Check that the saved state can be restored onto the configured topology",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, il, err := load()
		if err != nil {
			return err
		}
		st, err := snapshot.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		s, err := st.Load()
		if err != nil {
			return err
		}
		if err := snapshot.Apply(il, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d sections, %d signals\n", len(s.Sections), len(s.Signals))
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved state as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := load()
		if err != nil {
			return err
		}
		st, err := snapshot.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		s, err := st.Load()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotRestoreCmd, snapshotShowCmd)
}
