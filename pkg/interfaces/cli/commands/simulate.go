package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

const (
	modeBasic       = "basic"
	modeDelivery    = "delivery"
	modeSubstitutes = "substitutes"
)

func newSimulateCommand(opts *GlobalOptions) *cobra.Command {
	var (
		product productFlags
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Check whether stock covers a production request",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := product.request()
			if err != nil {
				return err
			}

			return opts.withEnvironment(cmd, func(env *Environment, p *output.Printer) error {
				ctx := cmd.Context()
				po := env.Orchestrator

				switch mode {
				case modeBasic:
					result, err := po.Simulate(ctx, req)
					if err != nil {
						return err
					}
					return p.Simulation(result)
				case modeDelivery:
					result, err := po.SimulateWithDelivery(ctx, req)
					if err != nil {
						return err
					}
					return p.Delivery(result, po.Simulator().PurchasePlan(result))
				case modeSubstitutes:
					result, err := po.Substitutes(ctx, req)
					if err != nil {
						return err
					}
					return p.Substitutes(result)
				default:
					return fmt.Errorf("unknown mode %q (expected basic, delivery or substitutes)", mode)
				}
			})
		},
	}

	product.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", modeBasic, "Simulation: basic, delivery, substitutes")
	return cmd
}
