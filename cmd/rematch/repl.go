package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/coregx/pcregex"
	"github.com/spf13/cobra"
)

const replHelp = `Enter text to search it with the current pattern.
  :p PATTERN      compile PATTERN
  :set KEY=VALUE  set an engine option and recompile
  :all            toggle printing every match
  :info           show the strategy and prefilter
  :q              quit`

func NewReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [PATTERN]",
		Short: "Try a pattern interactively against lines of input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := &replSession{opts: opts, out: cmd.OutOrStdout()}
			if len(args) == 1 {
				session.eval(":p " + args[0])
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				Stdin:           io.NopCloser(cmd.InOrStdin()),
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
				InterruptPrompt: "^C",
				EOFPrompt:       ":q",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			fmt.Fprintln(session.out, replHelp)
			for {
				line, err := rl.Readline()
				switch {
				case errors.Is(err, readline.ErrInterrupt):
					if line == "" {
						return nil
					}
					continue
				case errors.Is(err, io.EOF):
					return nil
				case err != nil:
					return err
				}
				if !session.eval(line) {
					return nil
				}
			}
		},
	}
}

// replSession holds the state between REPL lines.
type replSession struct {
	opts *options
	out  io.Writer
	re   *pcregex.Regex
	all  bool
}

// eval runs one line and reports whether the session continues.
func (s *replSession) eval(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case ":q", ":quit":
		return false
	case ":h", ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":p", ":pattern":
		s.compile(arg)
	case ":set":
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintln(s.out, "usage: :set KEY=VALUE")
			break
		}
		if s.opts.settings == nil {
			s.opts.settings = make(map[string]string)
		}
		s.opts.settings[strings.TrimSpace(key)] = strings.TrimSpace(value)
		if _, err := s.opts.config(); err != nil {
			delete(s.opts.settings, strings.TrimSpace(key))
			fmt.Fprintln(s.out, "error:", err)
			break
		}
		if s.re != nil {
			s.compile(s.re.String())
		}
	case ":all":
		s.all = !s.all
		fmt.Fprintln(s.out, "all:", s.all)
	case ":info":
		if s.re == nil {
			fmt.Fprintln(s.out, "no pattern")
			break
		}
		engine := s.re.Engine()
		pf := "none"
		if engine.Prefilter() != nil {
			pf = engine.Prefilter().String()
		}
		fmt.Fprintf(s.out, "pattern: %s\nstrategy: %s\nprefilter: %s\n", s.re, engine.Strategy(), pf)
	default:
		s.search(line)
	}
	return true
}

func (s *replSession) compile(pattern string) {
	re, err := s.opts.compile(pattern)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	s.re = re
	fmt.Fprintf(s.out, "pattern: %s (%s)\n", pattern, re.Engine().Strategy())
}

func (s *replSession) search(text string) {
	if s.re == nil {
		fmt.Fprintln(s.out, "no pattern; use :p PATTERN")
		return
	}
	n := 1
	if s.all {
		n = -1
	}
	b := []byte(text)
	spans := s.re.FindAllSpans(b, n)
	if len(spans) == 0 {
		fmt.Fprintln(s.out, "no match")
		return
	}
	for _, sp := range spans {
		fmt.Fprintf(s.out, "%d-%d\t%s\n", sp.Start, sp.End, strconv.Quote(string(b[sp.Start:sp.End])))
	}
}
