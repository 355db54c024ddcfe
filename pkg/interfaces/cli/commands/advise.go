package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

func newAdviseCommand(opts *GlobalOptions) *cobra.Command {
	var product productFlags

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Production analysis with a purchasing recommendation from the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := product.request()
			if err != nil {
				return err
			}
			return opts.withEnvironment(cmd, func(env *Environment, p *output.Printer) error {
				advice, err := env.Orchestrator.Advise(cmd.Context(), req)
				if err != nil {
					return err
				}
				return p.Advice(advice)
			})
		},
	}

	product.register(cmd)
	return cmd
}
