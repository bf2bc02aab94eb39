// Command rematch runs pcregex patterns from the command line.
//
//	rematch find '\b\w+\b' 'This is a group' --all
//	rematch captures '(?<user>\w+)@(\w+)' 'joe@example.com'
//	rematch dump 'a+(?>b)a'
//	rematch grep -j 8 'TODO\(\w+\)' *.go
package main

import (
	"context"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(NewCLI().ExecuteContext(context.Background()))
}
