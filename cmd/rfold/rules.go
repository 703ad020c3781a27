package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kk-code-lab/rfold/internal/rules"
	"github.com/spf13/cobra"
)

func newRulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [dir]",
		Short: "Print the resolved hide rules",
		Long: `Print the hide rules in effect for a directory, in the order they are
applied, followed by any rules that were rejected.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := opts.logger(cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			cmd.SetContext(logger.WithContext(cmd.Context()))

			ws, err := opts.openWorkspace(cmd, argOrEmpty(args))
			if err != nil {
				return err
			}
			return printRules(cmd.OutOrStdout(), ws)
		},
	}
}

func printRules(w io.Writer, ws *workspace) error {
	var b strings.Builder
	for _, label := range []struct{ name, path string }{
		{"global", ws.paths.Global},
		{"workspace", ws.paths.Workspace},
	} {
		if label.path != "" {
			fmt.Fprintf(&b, "# %s: %s\n", label.name, label.path)
		}
	}

	set := ws.store.Snapshot()
	if set.Len() == 0 {
		b.WriteString("(no rules)\n")
	}
	for _, r := range set.Rules() {
		fmt.Fprintf(&b, "%s -> %s\n", r.Trigger, strings.Join(r.Hidden, ", "))
	}

	var invalid *rules.ValidationError
	if errors.As(ws.problems, &invalid) {
		b.WriteString("\nrejected:\n")
		for _, p := range invalid.Problems {
			fmt.Fprintf(&b, "  %s\n", p.Error())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
