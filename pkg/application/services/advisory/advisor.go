package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/events"
)

// Narrator turns an analysis prompt into a purchasing recommendation
type Narrator interface {
	GenerateExplanation(ctx context.Context, prompt string) (string, error)
}

// Anonymizer masks personal and company identifiers before text leaves the process
type Anonymizer interface {
	Anonymize(text string) string
}

// Advisor combines the production analysis with a narrated recommendation
type Advisor struct {
	log        *slog.Logger
	simulator  *mrp.Simulator
	narrator   Narrator
	anonymizer Anonymizer
	eventStore events.EventStore
	runID      string
}

// Option configures the advisor
type Option func(*Advisor)

// WithNarrator sets the recommendation generator. Without one every advice
// is returned with LLMAvailable false.
func WithNarrator(n Narrator) Option {
	return func(a *Advisor) { a.narrator = n }
}

// WithAnonymizer masks prompts before they reach the narrator
func WithAnonymizer(an Anonymizer) Option {
	return func(a *Advisor) { a.anonymizer = an }
}

// WithEventStore records advice.generated events on the run stream
func WithEventStore(store events.EventStore, runID string) Option {
	return func(a *Advisor) {
		a.eventStore = store
		a.runID = runID
	}
}

// NewAdvisor creates a new advisor on top of a simulator
func NewAdvisor(logger *slog.Logger, simulator *mrp.Simulator, opts ...Option) *Advisor {
	a := &Advisor{
		log:       logger.With(slog.String("component", "advisory")),
		simulator: simulator,
		runID:     simulator.RunID(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NarratorAvailable reports whether a narrator is configured
func (a *Advisor) NarratorAvailable() bool {
	return a.narrator != nil
}

// AnalyzeWithLLM runs the comprehensive analysis and asks the narrator for a
// recommendation. A missing or failing narrator is not an error: the advice
// is returned with LLMAvailable false and the reason as recommendation.
func (a *Advisor) AnalyzeWithLLM(ctx context.Context, req mrp.ProductionRequest) (*entities.Advice, error) {
	a.log.Info("starting narrated analysis",
		slog.Int64("product_id", int64(req.ProductID)),
		slog.String("quantity", req.Quantity.String()),
	)

	report, err := a.simulator.ComprehensiveAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	advice := &entities.Advice{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Analysis:  report.Markdown,
		Report:    report,
	}
	advice.Recommendation, advice.LLMAvailable = a.narrate(ctx, BuildPrompt(report))

	a.publish(req.ProductID, advice.LLMAvailable)
	return advice, nil
}

// ExplainAlerts asks the narrator about stock alerts rendered as brief. The
// second return value is false when no narration was produced.
func (a *Advisor) ExplainAlerts(ctx context.Context, stockAlerts []entities.StockAlert, brief string) (string, bool) {
	if len(stockAlerts) == 0 {
		return brief, false
	}
	return a.narrate(ctx, brief)
}

func (a *Advisor) narrate(ctx context.Context, prompt string) (string, bool) {
	if a.narrator == nil {
		a.log.Info("narrator not configured")
		return "AI narrator not configured.", false
	}

	if a.anonymizer != nil {
		prompt = a.anonymizer.Anonymize(prompt)
	}

	text, err := a.narrator.GenerateExplanation(ctx, prompt)
	if err != nil {
		a.log.Warn("recommendation generation failed", slog.String("error", err.Error()))
		return fmt.Sprintf("Recommendation generation failed: %v", err), false
	}

	a.log.Info("recommendation generated", slog.Int("length", len(text)))
	return text, true
}

func (a *Advisor) publish(productID entities.ProductID, llmAvailable bool) {
	if a.eventStore == nil {
		return
	}
	if err := a.eventStore.AppendEvent(a.runID, events.NewAdviceGeneratedEvent(a.runID, productID, llmAvailable)); err != nil {
		a.log.Warn("failed to record audit event", slog.String("event_type", events.AdviceGeneratedEvent), slog.String("error", err.Error()))
	}
}

// Render combines the analysis with the narrated recommendation
func Render(advice *entities.Advice) string {
	var b strings.Builder
	b.WriteString(advice.Analysis)
	if advice.LLMAvailable && advice.Recommendation != "" {
		b.WriteString("\n\n---\n\n## AI recommendation\n\n")
		b.WriteString(advice.Recommendation)
		b.WriteString("\n")
	} else if advice.Recommendation != "" {
		fmt.Fprintf(&b, "\n\n*%s*\n", advice.Recommendation)
	}
	return b.String()
}
