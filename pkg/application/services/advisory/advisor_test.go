package advisory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	testhelpers "github.com/vsinha/supplyadvisor/pkg/application/services/testing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNarrator struct {
	prompts []string
	reply   string
	err     error
}

func (n *recordingNarrator) GenerateExplanation(_ context.Context, prompt string) (string, error) {
	n.prompts = append(n.prompts, prompt)
	return n.reply, n.err
}

type maskingAnonymizer struct{}

func (maskingAnonymizer) Anonymize(text string) string {
	return strings.ReplaceAll(text, "White sugar", "[NAME]")
}

func newCakeSimulator(store events.EventStore) *mrp.Simulator {
	data := testhelpers.BuildCakeScenario()
	return mrp.NewSimulator(testLogger(), data,
		mrp.WithDeliveryRepository(data),
		mrp.WithSubstituteRepository(data),
		mrp.WithShortageDocumentRepository(data),
		mrp.WithClock(func() time.Time { return testhelpers.ScenarioStart }),
		mrp.WithEventStore(store, "run-test"),
	)
}

func cakeRequest(qty int64) mrp.ProductionRequest {
	return mrp.ProductionRequest{ProductID: testhelpers.Cake, Quantity: decimal.NewFromInt(qty)}
}

func TestAdvisor_AnalyzeWithLLM(t *testing.T) {
	store := events.NewInMemoryEventStore(testLogger(), 100)
	narrator := &recordingNarrator{reply: "Order sugar today."}
	advisor := NewAdvisor(testLogger(), newCakeSimulator(store),
		WithNarrator(narrator),
		WithAnonymizer(maskingAnonymizer{}),
		WithEventStore(store, "run-test"),
	)

	advice, err := advisor.AnalyzeWithLLM(context.Background(), cakeRequest(50))
	if err != nil {
		t.Fatalf("AnalyzeWithLLM failed: %v", err)
	}

	if !advice.LLMAvailable {
		t.Error("Expected narrated advice")
	}
	if advice.Recommendation != "Order sugar today." {
		t.Errorf("Expected narrator reply, got %q", advice.Recommendation)
	}
	if advice.Report == nil || advice.Analysis != advice.Report.Markdown {
		t.Error("Expected the comprehensive report markdown as analysis")
	}

	if len(narrator.prompts) != 1 {
		t.Fatalf("Expected one prompt, got %d", len(narrator.prompts))
	}
	prompt := narrator.prompts[0]
	for _, want := range []string{"- SUGAR: missing 5.00", "Ingredient: [NAME] (SUGAR)", "Longest delivery: 14 days", "Earliest production date: 2024-06-17"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "White sugar") {
		t.Error("Expected prompt to be anonymized")
	}

	stream, err := store.ReadEvents("run-test", 0)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(stream) == 0 || stream[len(stream)-1].Type() != events.AdviceGeneratedEvent {
		t.Errorf("Expected advice.generated as the last event, got %d events", len(stream))
	}

	rendered := Render(advice)
	if !strings.Contains(rendered, "## AI recommendation") || !strings.Contains(rendered, "Order sugar today.") {
		t.Errorf("Expected rendered advice with recommendation, got:\n%s", rendered)
	}
}

func TestAdvisor_AnalyzeWithLLM_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		narrator Narrator
		want     string
	}{
		{
			name: "no narrator",
			want: "AI narrator not configured.",
		},
		{
			name:     "narrator failure",
			narrator: &recordingNarrator{err: errors.New("rate limited")},
			want:     "Recommendation generation failed: rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.narrator != nil {
				opts = append(opts, WithNarrator(tt.narrator))
			}
			advisor := NewAdvisor(testLogger(), newCakeSimulator(nil), opts...)

			advice, err := advisor.AnalyzeWithLLM(context.Background(), cakeRequest(50))
			if err != nil {
				t.Fatalf("Expected no error on narrator problems, got %v", err)
			}
			if advice.LLMAvailable {
				t.Error("Expected LLMAvailable false")
			}
			if advice.Recommendation != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, advice.Recommendation)
			}
			if advice.Analysis == "" {
				t.Error("Expected the analysis to be kept")
			}
		})
	}
}

func TestAdvisor_AnalyzeWithLLM_InvalidRequest(t *testing.T) {
	advisor := NewAdvisor(testLogger(), newCakeSimulator(nil))

	if _, err := advisor.AnalyzeWithLLM(context.Background(), cakeRequest(0)); err == nil {
		t.Error("Expected validation error for zero quantity")
	}
}

func TestAdvisor_ExplainAlerts(t *testing.T) {
	narrator := &recordingNarrator{reply: "Restock sugar."}
	advisor := NewAdvisor(testLogger(), newCakeSimulator(nil), WithNarrator(narrator))

	if _, ok := advisor.ExplainAlerts(context.Background(), nil, "No critical stock shortages."); ok {
		t.Error("Expected no narration without alerts")
	}

	text, ok := advisor.ExplainAlerts(context.Background(), []entities.StockAlert{{Status: entities.AlertCritical}}, "brief")
	if !ok || text != "Restock sugar." {
		t.Errorf("Expected narrated alerts, got %q %v", text, ok)
	}
}

func TestForecastSummary(t *testing.T) {
	if got := ForecastSummary(nil); got != "No forecast available." {
		t.Errorf("Unexpected empty summary %q", got)
	}

	week := testhelpers.ScenarioStart
	points := []entities.ForecastPoint{
		{ProductID: 2, Date: week, PredictedQuantity: 10, Model: "Random Forest"},
		{ProductID: 1, Date: week, PredictedQuantity: 4, Model: "Random Forest"},
		{ProductID: 2, Date: week.AddDate(0, 0, 7), PredictedQuantity: 30, Model: "Random Forest"},
	}
	summary := ForecastSummary(points)

	first := strings.Index(summary, "| 1 |")
	second := strings.Index(summary, "| 2 |")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("Expected products in ascending order, got:\n%s", summary)
	}
	if !strings.Contains(summary, "| 2 | Random Forest | 2 | 40.00 | 20.00 | 2024-06-10 (30.00) |") {
		t.Errorf("Unexpected product 2 row in:\n%s", summary)
	}
}
