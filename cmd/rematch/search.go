package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func NewMatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match PATTERN [TEXT...]",
		Short: "Report whether each text contains a match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			texts := args[1:]
			if len(texts) == 0 {
				b, err := input(cmd, nil, 0)
				if err != nil {
					return err
				}
				texts = []string{string(b)}
			}
			for _, text := range texts {
				fmt.Fprintln(cmd.OutOrStdout(), re.MatchString(text))
			}
			return nil
		},
	}
}

func NewFindCmd(opts *options) *cobra.Command {
	var (
		all   bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "find PATTERN [TEXT]",
		Short: "Print the leftmost match, or every match with --all",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			text, err := input(cmd, args, 1)
			if err != nil {
				return err
			}
			n := 1
			if all {
				n = limit
			}
			spans := re.FindAllSpans(text, n)
			if len(spans) == 0 {
				return errNoMatch
			}
			for _, s := range spans {
				fmt.Fprintf(cmd.OutOrStdout(), "%d-%d\t%s\n", s.Start, s.End, strconv.Quote(string(text[s.Start:s.End])))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Print every non-overlapping match")
	cmd.Flags().IntVarP(&limit, "limit", "n", -1, "Stop after this many matches with --all")
	return cmd
}

func NewCapturesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "captures PATTERN [TEXT]",
		Short: "Print every span recorded by each group of the leftmost match",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			text, err := input(cmd, args, 1)
			if err != nil {
				return err
			}
			caps := re.Captures(text)
			if caps == nil {
				return errNoMatch
			}

			names := re.SubexpNames()
			var data [][]string
			for i := 0; i < caps.Len(); i++ {
				var spans, texts []string
				for _, s := range caps.Spans(i) {
					spans = append(spans, fmt.Sprintf("%d-%d", s.Start, s.End))
					texts = append(texts, strconv.Quote(string(text[s.Start:s.End])))
				}
				data = append(data, []string{strconv.Itoa(i), names[i], strings.Join(spans, " "), strings.Join(texts, " ")})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"GROUP", "NAME", "SPANS", "TEXT"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

func NewReplaceCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "replace PATTERN REPLACEMENT [TEXT]",
		Short: "Replace the leftmost match, or every match with --all",
		Long: "Replace the leftmost match with REPLACEMENT taken literally. With --all every\n" +
			"match is replaced and $1, ${name} and $$ in REPLACEMENT are expanded.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			text, err := input(cmd, args, 2)
			if err != nil {
				return err
			}
			var out []byte
			if all {
				out = re.ReplaceAll(text, []byte(args[1]))
			} else {
				out = re.ReplaceFirst(text, []byte(args[1]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Replace every match, expanding group references")
	return cmd
}
