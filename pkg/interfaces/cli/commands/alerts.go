package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

func newAlertsCommand(opts *GlobalOptions) *cobra.Command {
	var (
		warehouses []int64
		includeAll bool
		explain    bool
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List products whose stock will not last the minimum number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnvironment(cmd, func(env *Environment, p *output.Printer) error {
				list, summary, err := env.Orchestrator.StockAlerts(cmd.Context(), warehouses, includeAll)
				if err != nil {
					return err
				}
				var explanation string
				if explain {
					_, explanation, _ = env.Orchestrator.ExplainAlerts(cmd.Context(), list)
				}
				return p.Alerts(list, summary, explanation)
			})
		},
	}

	cmd.Flags().Int64SliceVar(&warehouses, "warehouse", nil, "Warehouse ids to count stock from (default: all)")
	cmd.Flags().BoolVarP(&includeAll, "all", "a", false, "Include products with sufficient stock")
	cmd.Flags().BoolVar(&explain, "explain", false, "Ask the language model to comment on the alerts")
	return cmd
}
