package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/coregx/pcregex"
	"github.com/coregx/pcregex/internal/logutil"
	"github.com/coregx/pcregex/meta"
	"github.com/spf13/cobra"
)

// errNoMatch is returned by commands that print matches when there are none.
var errNoMatch = errors.New("no match")

// options holds the persistent flags shared by every subcommand.
type options struct {
	verbose  bool
	trace    bool
	settings map[string]string
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rematch",
		Short:         "Match PCRE-style patterns with lookahead, atomic groups and recursion",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := logutil.Level(opts.verbose, opts.trace)
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), level))
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug records")
	flags.BoolVar(&opts.trace, "trace", false, "Log engine trace records")
	flags.StringToStringVar(&opts.settings, "set", nil, "Set an engine option, e.g. --set dot_all=true --set prefilter_cost.decline=8")

	root.AddCommand(
		NewMatchCmd(opts),
		NewFindCmd(opts),
		NewCapturesCmd(opts),
		NewReplaceCmd(opts),
		NewDumpCmd(opts),
		NewGrepCmd(opts),
		NewReplCmd(opts),
	)
	return root
}

// config decodes the --set flags over the default configuration. Dotted
// keys address nested options.
func (o *options) config() (meta.Config, error) {
	if len(o.settings) == 0 {
		return meta.DefaultConfig(), nil
	}
	raw := make(map[string]any)
	for key, value := range o.settings {
		m := raw
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			sub, ok := m[part].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				m[part] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = value
	}
	return meta.DecodeConfig(raw)
}

// compile compiles pattern with the configuration from the flags.
func (o *options) compile(pattern string) (*pcregex.Regex, error) {
	config, err := o.config()
	if err != nil {
		return nil, err
	}
	re, err := pcregex.CompileWithConfig(pattern, config)
	if err != nil {
		return nil, err
	}
	slog.Debug("compiled", "pattern", pattern, "strategy", re.Engine().Strategy())
	return re, nil
}

// input returns the text argument at index i, or all of stdin when the
// argument is absent.
func input(cmd *cobra.Command, args []string, i int) ([]byte, error) {
	if i < len(args) {
		return []byte(args[i]), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return b, nil
}
