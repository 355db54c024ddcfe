package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	log := SetupWriter(EnvLocal, &buf).With(slog.String("component", "mrp"))
	log.Debug("simulation completed", slog.Int("shortages", 2))

	out := buf.String()
	for _, want := range []string{"DEBUG:", "simulation completed", `"component": "mrp"`, `"shortages": 2`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestPrettyHandler_Level(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	log := SetupWriter(EnvProd, &buf)
	log.Debug("hidden")
	log.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("Expected debug records to be dropped in prod")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("Expected info records in prod")
	}
}

func TestSetupWriter_JSON(t *testing.T) {
	var buf bytes.Buffer

	log := SetupWriter(EnvDev, &buf)
	log.Warn("delivery information unavailable", Err(errors.New("timeout")))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["error"] != "timeout" {
		t.Errorf("Expected error attribute, got %v", record["error"])
	}
	if record["level"] != "WARN" {
		t.Errorf("Expected WARN level, got %v", record["level"])
	}
}
