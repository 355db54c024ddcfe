package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	csvrepo "github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

func newForecastCommand(opts *GlobalOptions) *cobra.Command {
	var (
		model      string
		weeks      int
		products   []int64
		from, to   string
		evaluate   bool
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast weekly usage per product",
		RunE: func(cmd *cobra.Command, args []string) error {
			modelType, err := entities.ParseModelType(model)
			if err != nil {
				return err
			}
			req := orchestration.ForecastRequest{
				Model:      modelType,
				WeeksAhead: weeks,
				Evaluate:   evaluate,
			}
			for _, id := range products {
				req.ProductIDs = append(req.ProductIDs, entities.ProductID(id))
			}
			if req.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if req.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			return opts.withEnvironment(cmd, func(env *Environment, p *output.Printer) error {
				result, err := env.Orchestrator.Forecast(cmd.Context(), req)
				if err != nil {
					return err
				}
				if outputFile != "" {
					if err := csvrepo.WriteForecastsFile(outputFile, result.Points); err != nil {
						return err
					}
				}
				return p.Forecast(result)
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", string(entities.ModelBaseline), "Model: baseline, rf, gb, es, lstm")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "Weeks to forecast (default from config)")
	cmd.Flags().Int64SliceVar(&products, "products", nil, "Product ids (default: all)")
	cmd.Flags().StringVar(&from, "from", "", "First day of history, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day of history, YYYY-MM-DD")
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Cross-validate the model per product")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Also write the forecast CSV to this file")
	return cmd
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q (expected YYYY-MM-DD)", name, value)
	}
	return &t, nil
}
