package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/wrenfield/menagerie/config"
)

// OutputManager handles structured telemetry output: windowed stats, perf
// counters, and the per-tick trace, each as its own CSV file alongside a
// snapshot of the configuration the run used.
type OutputManager struct {
	dir string

	telemetryFile *os.File
	perfFile      *os.File
	traceFile     *os.File

	telemetryHeaderWritten bool
	perfHeaderWritten      bool
	traceHeaderWritten     bool
}

// NewOutputManager creates an output manager rooted at dir. Returns nil if
// dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	telemetryPath := filepath.Join(dir, "telemetry.csv")
	f, err := os.Create(telemetryPath)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f

	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	tracePath := filepath.Join(dir, "trace.csv")
	f, err = os.Create(tracePath)
	if err != nil {
		om.telemetryFile.Close()
		om.perfFile.Close()
		return nil, fmt.Errorf("creating trace.csv: %w", err)
	}
	om.traceFile = f

	return om, nil
}

// WriteConfig saves the configuration a run used as YAML alongside its
// output.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	records := []WindowStats{stats}
	if !om.telemetryHeaderWritten {
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.telemetryHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// TraceRow is one per-tick sample of a single creature's animation state,
// written to trace.csv for offline replay analysis (spec.md §8 csv trace).
type TraceRow struct {
	Tick        int32   `csv:"tick"`
	CreatureID  int64   `csv:"creature_id"`
	Activity    string  `csv:"activity"`
	Phase       string  `csv:"phase"`
	BlendWeight float64 `csv:"blend_weight"`
	IKResidual  float64 `csv:"ik_residual"`
}

// WriteTrace appends one trace row to trace.csv.
func (om *OutputManager) WriteTrace(row TraceRow) error {
	if om == nil {
		return nil
	}
	records := []TraceRow{row}
	if !om.traceHeaderWritten {
		if err := gocsv.Marshal(records, om.traceFile); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		om.traceHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.traceFile); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.perfFile, om.traceFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
