// Package config provides configuration loading for the sanctuary simulation.
package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig             `yaml:"world"`
	Physics   PhysicsConfig           `yaml:"physics"`
	Needs     NeedsConfig             `yaml:"needs"`
	Scoring   ScoringConfig           `yaml:"scoring"`
	Arbiter   ArbiterConfig           `yaml:"arbiter"`
	Behavior  BehaviorConfig          `yaml:"behavior"`
	Movement  MovementConfig          `yaml:"movement"`
	Predator  PredatorConfig          `yaml:"predator"`
	Actions   map[string]ActionConfig `yaml:"actions"`
	Species   []SpeciesConfig         `yaml:"species"`
	Scenario  ScenarioConfig          `yaml:"scenario"`
	Telemetry TelemetryConfig         `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds sanctuary dimensions in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds tick and spatial index parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// NeedsConfig holds base need rates. Species may override each rate.
type NeedsConfig struct {
	HungerRate float64 `yaml:"hunger_rate"` // per second
	ThirstRate float64 `yaml:"thirst_rate"` // per second
	EnergyRate float64 `yaml:"energy_rate"` // energy deficit gained per second
	FearDecay  float64 `yaml:"fear_decay"`  // exponential decay constant (1/s)
}

// ScoringConfig holds utility scorer constants.
type ScoringConfig struct {
	PressureExponent float64 `yaml:"pressure_exponent"` // k in pressure = level^k, k >= 1
	FalloffFloor     float64 `yaml:"falloff_floor"`     // distance falloff value at the edge of range
	DefaultAffinity  float64 `yaml:"default_affinity"`  // used when a species lacks an affinity entry
}

// ArbiterConfig holds action arbitration constants.
type ArbiterConfig struct {
	SwitchThreshold  float64 `yaml:"switch_threshold"`  // keep current target while S_cur >= S_best * this
	MinScore         float64 `yaml:"min_score"`         // best score must exceed this to act
	DecisionInterval float64 `yaml:"decision_interval"` // seconds between arbitrations per bird
}

// BehaviorConfig holds state machine constants.
type BehaviorConfig struct {
	PanicThreshold      float64 `yaml:"panic_threshold"`      // fear above this forces Fleeing
	InteractionDistance float64 `yaml:"interaction_distance"` // arrival radius around a provider
	SatisfiedLevel      float64 `yaml:"satisfied_level"`      // activity ends early below this need level
}

// MovementConfig holds steering speeds for the target resolver.
type MovementConfig struct {
	WanderSpeed     float64 `yaml:"wander_speed"`
	MoveSpeed       float64 `yaml:"move_speed"`
	FleeSpeed       float64 `yaml:"flee_speed"`
	WanderLookahead float64 `yaml:"wander_lookahead"` // distance of the wander destination
	WanderNoise     float64 `yaml:"wander_noise"`     // noise time scale for wander heading
	FleeDistance    float64 `yaml:"flee_distance"`    // distance of the flee destination
	Responsiveness  float64 `yaml:"responsiveness"`   // velocity blend per second toward desired
}

// PredatorConfig holds threat detection and alarm propagation constants.
type PredatorConfig struct {
	DetectionRadius float64 `yaml:"detection_radius"`
	FearGain        float64 `yaml:"fear_gain"`    // fear per second at zero distance
	AlertRadius     float64 `yaml:"alert_radius"` // range of alarm calls
	AlertFear       float64 `yaml:"alert_fear"`   // fear added by an alarm call at zero distance
}

// ActionConfig describes how an action services a need.
type ActionConfig struct {
	Need        string  `yaml:"need"`         // need serviced (or driving, if inverse)
	Inverse     bool    `yaml:"inverse"`      // pressure comes from 1 - need (idle drives)
	Weight      float64 `yaml:"weight"`       // multiplier on need pressure
	RestoreRate float64 `yaml:"restore_rate"` // need reduction per second while active
	ConsumeRate float64 `yaml:"consume_rate"` // provider supply used per second
	Duration    float64 `yaml:"duration"`     // seconds before the activity completes
	Cooldown    float64 `yaml:"cooldown"`     // seconds the action is suppressed afterwards
}

// SpeciesConfig holds per-species behavioral parameters.
type SpeciesConfig struct {
	Name             string             `yaml:"name"`
	SizeClass        int                `yaml:"size_class"`
	FlockSize        int                `yaml:"flock_size"`
	TerritoryRadius  float64            `yaml:"territory_radius"`
	Aggression       float64            `yaml:"aggression"`
	PerceptionRadius float64            `yaml:"perception_radius"`
	PanicThreshold   float64            `yaml:"panic_threshold"`  // 0 = use behavior.panic_threshold
	NeedRates        map[string]float64 `yaml:"need_rates"`       // overrides needs.*_rate (fear = decay)
	Affinities       map[string]float64 `yaml:"affinities"`       // action -> multiplier
	FoodPreferences  map[string]float64 `yaml:"food_preferences"` // provider kind -> multiplier
	Priority         []string           `yaml:"priority"`         // tie-break order, first wins
}

// ScenarioConfig seeds the world for headless runs.
type ScenarioConfig struct {
	Birds     []BirdSpawnConfig     `yaml:"birds"`
	Providers []ProviderSpawnConfig `yaml:"providers"`
	Threats   []ThreatConfig        `yaml:"threats"`
}

// BirdSpawnConfig spawns Count birds of a species at random positions.
type BirdSpawnConfig struct {
	Species string `yaml:"species"`
	Count   int    `yaml:"count"`
}

// ProviderSpawnConfig places one utility provider.
type ProviderSpawnConfig struct {
	Action      string  `yaml:"action"`
	Kind        string  `yaml:"kind"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	BaseUtility float64 `yaml:"base_utility"`
	Range       float64 `yaml:"range"`
	Capacity    float64 `yaml:"capacity"`    // 0 = unlimited
	RefillEvery float64 `yaml:"refill_every"` // seconds between refills, 0 = never
}

// ThreatConfig describes a predator patrolling a circle.
type ThreatConfig struct {
	CenterX  float64 `yaml:"center_x"`
	CenterY  float64 `yaml:"center_y"`
	Radius   float64 `yaml:"radius"`
	Period   float64 `yaml:"period"`   // seconds per lap
	Start    float64 `yaml:"start"`    // sim time of arrival
	Duration float64 `yaml:"duration"` // seconds present per visit
	Every    float64 `yaml:"every"`    // seconds between visits, 0 = once
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	FactBatchSize       int     `yaml:"fact_batch_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32 // Physics.DT as float32
	WorldW32 float32 // World.Width as float32
	WorldH32 float32 // World.Height as float32
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
		// Unmarshal into same struct - only overwrites fields present in file
		defaultActions := maps.Clone(cfg.Actions)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		actions, err := mergeActions(defaultActions, data)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Actions = actions
	}

	cfg.computeDerived()

	return cfg, nil
}

// mergeActions layers the actions in data over base field by field.
// yaml.v3 decodes map values into fresh structs, so a plain Unmarshal
// would zero every field an override leaves out.
func mergeActions(base map[string]ActionConfig, data []byte) (map[string]ActionConfig, error) {
	var overlay struct {
		Actions map[string]yaml.Node `yaml:"actions"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}

	out := make(map[string]ActionConfig, len(base)+len(overlay.Actions))
	maps.Copy(out, base)
	for name, node := range overlay.Actions {
		ac := out[name]
		if err := node.Decode(&ac); err != nil {
			return nil, fmt.Errorf("action %q: %w", name, err)
		}
		out[name] = ac
	}
	return out, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of the config, suitable for per-run mutation.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: clone marshal: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: clone unmarshal: %v", err))
	}
	out.computeDerived()
	return out
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Physics.DT <= 0 {
		c.Physics.DT = 1.0 / 60.0
	}
	if c.Physics.GridCellSize <= 0 {
		c.Physics.GridCellSize = 64
	}
	if c.Scoring.PressureExponent < 1 {
		c.Scoring.PressureExponent = 1
	}

	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)

	if len(c.Species) == 0 {
		c.Species = []SpeciesConfig{{Name: "sparrow", PerceptionRadius: 300}}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
