package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
)

func TestAnonymizer_Anonymize(t *testing.T) {
	a := NewAnonymizer()
	a.Mask("Sugar Works", "[VENDOR]")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"nip", "Vendor NIP 5260250274 late", "Vendor NIP [NIP] late"},
		{"pesel", "Contact 44051401359", "Contact [PESEL]"},
		{"email", "Write to jan.kowalski@example.pl today", "Write to [EMAIL] today"},
		{"registered term", "Order from Sugar Works", "Order from [VENDOR]"},
		{"short numbers kept", "Missing 1250 kg", "Missing 1250 kg"},
		{"longer numbers kept", "Batch 123456789012", "Batch 123456789012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Anonymize(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

type flakyNarrator struct {
	failures int
	calls    int
}

func (f *flakyNarrator) GenerateExplanation(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("upstream 503")
	}
	return "answer to " + prompt, nil
}

func TestResilientNarrator_RetriesUntilSuccess(t *testing.T) {
	next := &flakyNarrator{failures: 2}
	n := NewResilientNarrator("test", next, logging.Discard(), WithRetries(3, 0))

	text, err := n.GenerateExplanation(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if text != "answer to prompt" {
		t.Errorf("Expected answer, got %q", text)
	}
	if next.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", next.calls)
	}
}

func TestResilientNarrator_OpensBreaker(t *testing.T) {
	next := &flakyNarrator{failures: 100}
	n := NewResilientNarrator("test", next, logging.Discard(),
		WithRetries(2, 0),
		WithBreaker(2, time.Hour),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := n.GenerateExplanation(ctx, "prompt")
		if err == nil || errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("Expected narrator failure on call %d, got %v", i+1, err)
		}
	}
	if n.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %s", n.State())
	}

	_, err := n.GenerateExplanation(ctx, "prompt")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if next.calls != 4 {
		t.Errorf("Expected 4 upstream calls before the breaker opened, got %d", next.calls)
	}
}

func TestResilientNarrator_ContextCancelled(t *testing.T) {
	next := &flakyNarrator{failures: 100}
	n := NewResilientNarrator("test", next, logging.Discard(), WithRetries(5, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.GenerateExplanation(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if next.calls != 1 {
		t.Errorf("Expected a single attempt, got %d", next.calls)
	}
}

func TestNewNarrator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.AIConfig{Provider: "none"}, wantNil: true},
		{name: "empty provider", cfg: config.AIConfig{}, wantNil: true},
		{name: "openrouter without key", cfg: config.AIConfig{Provider: "openrouter"}, wantErr: true},
		{name: "openai without key", cfg: config.AIConfig{Provider: "openai"}, wantErr: true},
		{name: "unknown", cfg: config.AIConfig{Provider: "gemini", APIKey: "k"}, wantErr: true},
		{name: "openrouter", cfg: config.AIConfig{Provider: "openrouter", APIKey: "k", Model: "openai/gpt-4o-mini", MaxRetries: 2}},
		{name: "openai", cfg: config.AIConfig{Provider: "openai", APIKey: "k", Model: "openai/gpt-4o-mini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNarrator(tt.cfg, logging.Discard())
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantNil != (n == nil) {
				t.Errorf("Expected nil narrator %v, got %v", tt.wantNil, n)
			}
			if !tt.wantNil {
				if _, ok := n.(*ResilientNarrator); !ok {
					t.Errorf("Expected ResilientNarrator, got %T", n)
				}
			}
		})
	}
}

func TestAdviceSchema(t *testing.T) {
	schema, err := AdviceSchema()
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("Expected properties in schema, got %v", schema)
	}
	for _, field := range []string{"assessment", "priority", "actions", "risks"} {
		if _, ok := props[field]; !ok {
			t.Errorf("Expected property %s in schema", field)
		}
	}

	priority := props["priority"].(map[string]any)
	enum, _ := priority["enum"].([]any)
	if len(enum) != 3 {
		t.Errorf("Expected 3 priority values, got %v", priority["enum"])
	}
	if schema["additionalProperties"] != false {
		t.Errorf("Expected additionalProperties false, got %v", schema["additionalProperties"])
	}
}

func TestParseAndRenderStructuredAdvice(t *testing.T) {
	advice, err := ParseStructuredAdvice(`{"assessment":"Sugar blocks production.","priority":"high",
		"actions":["Order 55 kg of sugar","Use brown sugar"],"risks":["14 day lead time"]}`)
	if err != nil {
		t.Fatalf("Failed to parse advice: %v", err)
	}

	out := RenderStructuredAdvice(*advice)
	for _, s := range []string{"**Priority:** high", "Sugar blocks production.", "1. Order 55 kg of sugar", "2. Use brown sugar", "- 14 day lead time"} {
		if !strings.Contains(out, s) {
			t.Errorf("Expected rendered advice to contain %q, got:\n%s", s, out)
		}
	}

	invalid := []string{
		`not json`,
		`{"assessment":"x","priority":"urgent"}`,
		`{"assessment":" ","priority":"low"}`,
	}
	for _, content := range invalid {
		if _, err := ParseStructuredAdvice(content); err == nil {
			t.Errorf("Expected error for %s", content)
		}
	}

	empty := RenderStructuredAdvice(entities.StructuredAdvice{Assessment: "ok", Priority: "low"})
	if strings.Contains(empty, "### Actions") || strings.Contains(empty, "### Risks") {
		t.Errorf("Expected no empty sections, got:\n%s", empty)
	}
}
