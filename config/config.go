// Package config provides configuration loading and access for the
// animation core: rig limits, activity tuning tables, gait templates,
// and IK/secondary-motion numerical policies.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all animation-core configuration.
type Config struct {
	Rig        RigConfig                 `yaml:"rig"`
	Evaluator  EvaluatorConfig           `yaml:"evaluator"`
	IK         IKConfig                  `yaml:"ik"`
	Secondary  SecondaryConfig           `yaml:"secondary_motion"`
	Activities map[string]ActivityTuning `yaml:"activities"`
	Gaits      map[string]GaitSpec       `yaml:"gaits"`
	Telemetry  TelemetryConfig           `yaml:"telemetry"`

	// Derived holds values computed once after loading.
	Derived DerivedConfig `yaml:"-"`
}

// RigConfig holds bone-budget and classification-derived limits.
type RigConfig struct {
	MaxBones            int     `yaml:"max_bones"`
	MaxTailSegments     int     `yaml:"max_tail_segments"`
	LOD1SpineCap        int     `yaml:"lod1_spine_cap"`
	LOD2SpineCap        int     `yaml:"lod2_spine_cap"`
	NeckLengthThreshold float64 `yaml:"neck_length_threshold"`
	LegSegmentCount     int     `yaml:"leg_segment_count"`
	WingSegmentCount    int     `yaml:"wing_segment_count"`
	ArmSegmentCount     int     `yaml:"arm_segment_count"`
	TentacleSegmentMax  int     `yaml:"tentacle_segment_max"`
}

// EvaluatorConfig tunes the Trigger Evaluator (C3).
type EvaluatorConfig struct {
	ActivationThreshold float64 `yaml:"activation_threshold"`
}

// IKConfig tunes the IK solvers (C6).
type IKConfig struct {
	EpsilonFactor    float64 `yaml:"epsilon_factor"` // multiplied by body scale
	MaxIterations    int     `yaml:"max_iterations"`
	MaxStableDT      float64 `yaml:"max_stable_dt"`
}

// SecondaryConfig tunes the passive-bone spring dynamics (C8).
type SecondaryConfig struct {
	DefaultStiffness float64 `yaml:"default_stiffness"`
	DefaultDamping   float64 `yaml:"default_damping"`
	RootImpulseGain  float64 `yaml:"root_impulse_gain"`
	TurbulenceGain   float64 `yaml:"turbulence_gain"`
}

// ActivityTuning is one row of the per-type activity configuration table
// (spec.md §3 ActivityConfig). Keyed by ActivityType name in the YAML map.
type ActivityTuning struct {
	Priority         int     `yaml:"priority"`
	MinDuration      float64 `yaml:"min_duration"`
	MaxDuration      float64 `yaml:"max_duration"`
	BlendInTime      float64 `yaml:"blend_in_time"`
	BlendOutTime     float64 `yaml:"blend_out_time"`
	CanBeInterrupted bool    `yaml:"can_be_interrupted"`
	RequiresTarget   bool    `yaml:"requires_target"`
	EnergyCost       float64 `yaml:"energy_cost"`
	SocialRange      float64 `yaml:"social_range"`
	StressResponse   float64 `yaml:"stress_response"`
}

// GaitSpec is the declarative description of a locomotion gait (spec.md
// §4.5 locomotion base), grounded on the gait-template shape used by
// legged-robot planners in the wider corpus.
type GaitSpec struct {
	CycleTime            float64            `yaml:"cycle_time"`
	PhaseOffset          map[string]float64 `yaml:"phase_offset"` // limb kind -> phase in [0,1)
	DutyCycle            float64            `yaml:"duty_cycle"`
	StepHeight           float64            `yaml:"step_height"`
	Undulation           bool               `yaml:"undulation"`
	UndulationAmplitude  float64            `yaml:"undulation_amplitude"`
	UndulationWavelength float64            `yaml:"undulation_wavelength"`
}

// TelemetryConfig tunes the telemetry/stat aggregation window.
type TelemetryConfig struct {
	StatsWindowSec  float64 `yaml:"stats_window_sec"`
	CSVTraceEnabled bool    `yaml:"csv_trace_enabled"`
}

// DerivedConfig holds values computed once after loading.
type DerivedConfig struct {
	MaxStableDT32 float32
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.MaxStableDT32 = float32(c.IK.MaxStableDT)
}

// ActivityTuningFor returns the tuning row for an activity name, falling
// back to a permissive default row if the table has no entry (e.g. a
// custom rig category that hasn't been configured yet).
func (c *Config) ActivityTuningFor(name string) ActivityTuning {
	if t, ok := c.Activities[name]; ok {
		return t
	}
	return ActivityTuning{
		Priority:         1,
		MinDuration:      1,
		MaxDuration:      2,
		BlendInTime:      0.3,
		BlendOutTime:     0.3,
		CanBeInterrupted: true,
	}
}

// IsRegistered reports whether name has an explicit tuning row, rather
// than the permissive default ActivityTuningFor falls back to. Callers
// that must reject an unrecognized activity outright (spec.md §7
// UnknownActivity) check this first.
func (c *Config) IsRegistered(name string) bool {
	_, ok := c.Activities[name]
	return ok
}

// SetActivityTuning overrides a row of the activity table at runtime,
// backing the exposed setActivityConfig operation (spec.md §6).
func (c *Config) SetActivityTuning(name string, tuning ActivityTuning) {
	if c.Activities == nil {
		c.Activities = make(map[string]ActivityTuning)
	}
	c.Activities[name] = tuning
}

// WriteYAML saves the configuration to path, used by telemetry output runs
// to capture the exact tuning a trace was recorded under.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
