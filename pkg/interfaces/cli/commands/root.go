package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

// GlobalOptions are flags shared by every subcommand
type GlobalOptions struct {
	ConfigPath  string
	Format      string
	Source      string
	ScenarioDir string
	Verbose     bool
}

// productFlags select the product, quantity, technology and warehouses of a simulation
type productFlags struct {
	productID    int64
	quantity     string
	technologyID int64
	warehouses   []int64
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.productID, "product", "p", 0, "Product id to produce")
	cmd.Flags().StringVarP(&f.quantity, "quantity", "q", "1", "Quantity to produce")
	cmd.Flags().Int64Var(&f.technologyID, "technology", 0, "Technology id (default: newest)")
	cmd.Flags().Int64SliceVar(&f.warehouses, "warehouse", nil, "Warehouse ids to count stock from (default: all)")
	_ = cmd.MarkFlagRequired("product")
}

func (f *productFlags) request() (mrp.ProductionRequest, error) {
	qty, err := decimal.NewFromString(f.quantity)
	if err != nil {
		return mrp.ProductionRequest{}, fmt.Errorf("invalid quantity %q: %w", f.quantity, err)
	}
	req := mrp.ProductionRequest{
		ProductID:    entities.ProductID(f.productID),
		Quantity:     qty,
		WarehouseIDs: f.warehouses,
	}
	if f.technologyID > 0 {
		id := f.technologyID
		req.TechnologyID = &id
	}
	return req, req.Validate()
}

// NewRootCommand builds the advisor command tree
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Purchasing advisor: usage forecasts, production simulation and stock alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default: $CONFIG_FILEPATH$CONFIG_FILENAME or config.yml)")
	root.PersistentFlags().StringVarP(&opts.Format, "format", "f", "text", "Output format: text, json, csv")
	root.PersistentFlags().StringVar(&opts.Source, "source", "", "Data source override: csv or db")
	root.PersistentFlags().StringVar(&opts.ScenarioDir, "scenario", "", "Scenario directory override for the csv source")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newForecastCommand(opts),
		newSimulateCommand(opts),
		newAnalyzeCommand(opts),
		newAlertsCommand(opts),
		newAdviseCommand(opts),
		newServeCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// Execute runs the command tree with os.Args
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *GlobalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if o.Source != "" {
		cfg.Data.Source = o.Source
	}
	if o.ScenarioDir != "" {
		cfg.Data.ScenarioDir = o.ScenarioDir
	}
	return cfg, cfg.Validate()
}

// environment loads the config and wires the services. Logs go to stderr
// only with --verbose so stdout stays parseable.
func (o *GlobalOptions) environment(cmd *cobra.Command) (*Environment, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.Discard()
	if o.Verbose {
		logger = logging.SetupWriter(cfg.Env, cmd.ErrOrStderr())
	}
	return NewEnvironment(cmd.Context(), cfg, logger)
}

func (o *GlobalOptions) printer(out io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(o.Format)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(out, format), nil
}

// withEnvironment runs fn with a wired environment and closes it afterwards
func (o *GlobalOptions) withEnvironment(cmd *cobra.Command, fn func(env *Environment, p *output.Printer) error) error {
	p, err := o.printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	env, err := o.environment(cmd)
	if err != nil {
		return err
	}

	runErr := fn(env, p)
	if err := env.Close(context.WithoutCancel(cmd.Context())); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return runErr
}
