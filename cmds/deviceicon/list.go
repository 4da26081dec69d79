package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/safing/audioicons/service/deviceicon"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list <container>",
	Short: "List the icon groups of an executable or library",
	Args:  cobra.ExactArgs(1),
	RunE:  list,
}

func list(cmd *cobra.Command, args []string) error {
	groups, err := deviceicon.ListIconGroups(args[0])
	if err != nil {
		return err
	}

	return printIconGroups(cmd.OutOrStdout(), args[0], groups)
}

func printIconGroups(w io.Writer, container string, groups []deviceicon.IconGroup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tID\tSPECIFIER\tFRAMES")
	for _, group := range groups {
		fmt.Fprintf(tw, "%d\t%s\t%s,%d\t%d\n", group.Index, group.ID, container, group.Index, group.Frames)
	}
	return tw.Flush()
}
