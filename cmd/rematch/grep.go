package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/coregx/pcregex"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// grepResult holds the matching lines of one file.
type grepResult struct {
	lines []grepLine
}

type grepLine struct {
	number int
	text   []byte
}

func NewGrepCmd(opts *options) *cobra.Command {
	var (
		jobs  int
		count bool
	)
	cmd := &cobra.Command{
		Use:   "grep PATTERN FILE...",
		Short: "Print the lines of each file that contain a match",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := opts.compile(args[0])
			if err != nil {
				return err
			}
			files := args[1:]
			results, err := grepFiles(cmd.Context(), re, files, jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for i, res := range results {
				total += len(res.lines)
				if count {
					fmt.Fprintf(out, "%s:%d\n", files[i], len(res.lines))
					continue
				}
				for _, l := range res.lines {
					fmt.Fprintf(out, "%s:%d:%s\n", files[i], l.number, l.text)
				}
			}
			if total == 0 {
				return errNoMatch
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of files searched concurrently")
	cmd.Flags().BoolVarP(&count, "count", "c", false, "Print the number of matching lines per file")
	return cmd
}

// grepFiles searches files concurrently and returns the results in the
// order of files. The first read error cancels the remaining searches.
func grepFiles(ctx context.Context, re *pcregex.Regex, files []string, jobs int) ([]grepResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]grepResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines, err := grepFile(re, name)
			if err != nil {
				return err
			}
			results[i] = grepResult{lines: lines}
			slog.Debug("searched", "file", name, "matches", len(lines))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func grepFile(re *pcregex.Regex, name string) ([]grepLine, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []grepLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; scanner.Scan(); n++ {
		if line := scanner.Bytes(); re.Match(line) {
			lines = append(lines, grepLine{number: n, text: bytes.Clone(line)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return lines, nil
}
