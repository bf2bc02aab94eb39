package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/pcregex/internal/codegen"
	"github.com/coregx/pcregex/nfa"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func NewDumpCmd(opts *options) *cobra.Command {
	var (
		goSource bool
		pkg      string
		fn       string
	)
	cmd := &cobra.Command{
		Use:   "dump PATTERN",
		Short: "Print the optimized node graph, or Go source rebuilding it with --go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			engine := re.Engine()
			g := engine.Graph()
			if goSource {
				return codegen.Render(cmd.OutOrStdout(), g, codegen.Config{Package: pkg, Func: fn, Pattern: args[0]})
			}

			out := cmd.OutOrStdout()
			pf := "none"
			if engine.Prefilter() != nil {
				pf = engine.Prefilter().String()
			}
			fmt.Fprintf(out, "strategy: %s\nprefilter: %s\ngroups: %d\nbfs-capable: %t\nmemoizable: %t\n\n",
				engine.Strategy(), pf, g.NumGroups(), g.IsBFSCapable(), g.IsMemoizable())

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"ID", "FAMILY", "NODE", "CHILDREN"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			for id := 0; id < g.Len(); id++ {
				n := g.Node(nfa.NodeID(id))
				table.Append([]string{strconv.Itoa(id), n.Kind.Family().String(), n.String(), childList(n.Children)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&goSource, "go", false, "Print Go source that rebuilds the graph")
	cmd.Flags().StringVar(&pkg, "package", "main", "Package clause for --go")
	cmd.Flags().StringVar(&fn, "func", "Compiled", "Constructor name for --go")
	return cmd
}

func childList(c nfa.Children) string {
	ids := make([]string, c.Len())
	for i, id := range c.IDs() {
		ids[i] = strconv.Itoa(int(id))
	}
	return strings.Join(ids, " ")
}
