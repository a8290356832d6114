package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wrenfield/menagerie/config"
)

func init() {
	config.MustInit("")
}

func TestNewOutputManager_EmptyDirDisablesOutput(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil OutputManager for empty dir")
	}
	// All writer methods must be safe no-ops on a nil receiver.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManager_WritesTelemetryCSVWithHeader(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 60, CreatureCount: 3}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 120, CreatureCount: 4}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	om.Close()

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") {
		t.Errorf("expected header row to name window_end, got %q", lines[0])
	}
}

func TestOutputManager_WritesConfigYAML(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config.yaml to exist: %v", err)
	}
}

func TestOutputManager_WritesTraceRows(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	row := TraceRow{Tick: 1, CreatureID: 7, Activity: "Eating", Phase: "Hold", BlendWeight: 1, IKResidual: 0.02}
	if err := om.WriteTrace(row); err != nil {
		t.Fatalf("WriteTrace: %v", err)
	}
	om.Close()

	data, err := os.ReadFile(filepath.Join(dir, "trace.csv"))
	if err != nil {
		t.Fatalf("reading trace.csv: %v", err)
	}
	if !strings.Contains(string(data), "Eating") {
		t.Errorf("expected trace.csv to contain the activity name, got %q", string(data))
	}
}
