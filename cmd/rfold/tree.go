package main

import (
	"github.com/kk-code-lab/rfold/internal/tree"
	"github.com/spf13/cobra"
)

func newTreeCmd(opts *options) *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "Print the folded tree",
		Long: `Print the directory tree with hidden files indented beneath the file that
folds them. Containers are marked with the suffixes they fold, e.g.

  app.ts [*.js]
    app.js`,
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
			return ws.tree.Fprint(cmd.Context(), cmd.OutOrStdout(), tree.PrintOptions{Flat: flat})
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "Print only the top-level listing")
	return cmd
}
