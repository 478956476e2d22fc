// Package config provides Viper-based configuration loading for the maze
// simulation.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/weapon"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds frame driver and world settings.
type SimulationConfig struct {
	// TickRate is the number of fixed-timestep frames per second.
	TickRate int `mapstructure:"tick_rate"`
	// Level is the path to the level YAML file.
	Level string `mapstructure:"level"`
	// Duration bounds a headless run; zero runs until shutdown.
	Duration time.Duration `mapstructure:"duration"`
	// ProjectileMaxAge removes projectiles older than this; zero disables the bound.
	ProjectileMaxAge time.Duration `mapstructure:"projectile_max_age"`
	// ProjectileMaxRange removes projectiles that traveled farther; zero disables the bound.
	ProjectileMaxRange float64 `mapstructure:"projectile_max_range"`
	// PointerScale is radians per pointer unit before sensitivity.
	PointerScale float64 `mapstructure:"pointer_scale"`
}

// Timestep returns the duration of one frame.
//
// Precondition: TickRate > 0.
func (s SimulationConfig) Timestep() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// ActorConfig holds per-actor movement tuning.
type ActorConfig struct {
	BaseSpeed       float64 `mapstructure:"base_speed"`
	TurnSpeed       float64 `mapstructure:"turn_speed"`
	CollisionRadius float64 `mapstructure:"collision_radius"`
	Sensitivity     float64 `mapstructure:"sensitivity"`
}

// Spec converts the tuning to an actor.Spec.
func (a ActorConfig) Spec() actor.Spec {
	return actor.Spec{
		BaseSpeed:       a.BaseSpeed,
		TurnSpeed:       a.TurnSpeed,
		CollisionRadius: a.CollisionRadius,
		Sensitivity:     a.Sensitivity,
	}
}

// ChaserConfig tunes the built-in chaser behavior.
type ChaserConfig struct {
	FireRange    float64 `mapstructure:"fire_range"`
	AimTolerance float64 `mapstructure:"aim_tolerance"`
	HoldDistance float64 `mapstructure:"hold_distance"`
	Search       bool    `mapstructure:"search"`
}

// WeaponConfig overrides one weapon variant. Unset fields keep the built-in
// value; a field set to 0 overrides it with 0.
type WeaponConfig struct {
	MaxAmmo          *int     `mapstructure:"max_ammo"`
	CooldownMs       *int     `mapstructure:"cooldown_ms"`
	Range            *float64 `mapstructure:"range"`
	ProjectileSpeed  *float64 `mapstructure:"projectile_speed"`
	ProjectileRadius *float64 `mapstructure:"projectile_radius"`
	EffectDurationMs *int     `mapstructure:"effect_duration_ms"`
	SlowdownFactor   *float64 `mapstructure:"slowdown_factor"`
}

// Tuning converts the overrides to a weapon.Tuning.
//
// Postcondition: a nil field here is a nil field in the result.
func (w WeaponConfig) Tuning() weapon.Tuning {
	return weapon.Tuning{
		MaxAmmo:          w.MaxAmmo,
		Cooldown:         millis(w.CooldownMs),
		Range:            w.Range,
		ProjectileSpeed:  w.ProjectileSpeed,
		ProjectileRadius: w.ProjectileRadius,
		EffectDuration:   millis(w.EffectDurationMs),
		SlowdownFactor:   w.SlowdownFactor,
	}
}

func millis(ms *int) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

func negative[T int | float64](v *T) bool {
	return v != nil && *v < 0
}

// DebugConfig holds the debug HTTP server settings.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// AllowedOrigins lists the browser origins accepted by CORS and the
	// snapshot stream. Empty disables CORS and admits only same-origin streams.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// StreamRate caps snapshots per second pushed to each stream client.
	StreamRate float64 `mapstructure:"stream_rate"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (d DebugConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// ScriptsConfig holds behavior script settings.
type ScriptsConfig struct {
	// Dir holds *.lua behavior scripts; empty loads none.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps Lua opcodes per hook call; zero uses the scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig           `mapstructure:"logging"`
	Simulation SimulationConfig        `mapstructure:"simulation"`
	Player     ActorConfig             `mapstructure:"player"`
	Enemy      ActorConfig             `mapstructure:"enemy"`
	Chaser     ChaserConfig            `mapstructure:"chaser"`
	Weapons    map[string]WeaponConfig `mapstructure:"weapons"`
	Debug      DebugConfig             `mapstructure:"debug"`
	Scripts    ScriptsConfig           `mapstructure:"scripts"`
}

// WeaponTunings returns the weapon overrides keyed by weapon kind.
//
// Precondition: c.Validate() returned nil.
func (c Config) WeaponTunings() map[weapon.Kind]weapon.Tuning {
	out := make(map[weapon.Kind]weapon.Tuning, len(c.Weapons))
	for name, w := range c.Weapons {
		out[weapon.Kind(name)] = w.Tuning()
	}
	return out
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateSimulation(c.Simulation),
		validateActor("player", c.Player),
		validateActor("enemy", c.Enemy),
		validateChaser(c.Chaser),
		validateWeapons(c.Weapons),
		validateDebug(c.Debug),
		validateScripts(c.Scripts),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate < 1 || s.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", s.TickRate))
	}
	if s.Level == "" {
		errs = append(errs, "simulation.level must not be empty")
	}
	if s.Duration < 0 {
		errs = append(errs, "simulation.duration must not be negative")
	}
	if s.ProjectileMaxAge < 0 {
		errs = append(errs, "simulation.projectile_max_age must not be negative")
	}
	if s.ProjectileMaxRange < 0 {
		errs = append(errs, "simulation.projectile_max_range must not be negative")
	}
	if s.PointerScale < 0 {
		errs = append(errs, "simulation.pointer_scale must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateActor(section string, a ActorConfig) error {
	var errs []string
	if a.BaseSpeed < 0 {
		errs = append(errs, fmt.Sprintf("%s.base_speed must not be negative, got %g", section, a.BaseSpeed))
	}
	if a.TurnSpeed < 0 {
		errs = append(errs, fmt.Sprintf("%s.turn_speed must not be negative, got %g", section, a.TurnSpeed))
	}
	if a.CollisionRadius <= 0 || a.CollisionRadius >= 0.5 {
		errs = append(errs, fmt.Sprintf("%s.collision_radius must be in (0, 0.5), got %g", section, a.CollisionRadius))
	}
	if a.Sensitivity < 0 {
		errs = append(errs, fmt.Sprintf("%s.sensitivity must not be negative, got %g", section, a.Sensitivity))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateChaser(c ChaserConfig) error {
	if c.FireRange < 0 || c.AimTolerance < 0 || c.HoldDistance < 0 {
		return errors.New("chaser.fire_range, chaser.aim_tolerance and chaser.hold_distance must not be negative")
	}
	return nil
}

func validateWeapons(ws map[string]WeaponConfig) error {
	names := make([]string, 0, len(ws))
	for name := range ws {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	for _, name := range names {
		p, err := weapon.Lookup(weapon.Kind(name))
		if err != nil {
			errs = append(errs, fmt.Sprintf("weapons.%s: %v", name, err))
			continue
		}
		w := ws[name]
		if negative(w.MaxAmmo) || negative(w.CooldownMs) || negative(w.EffectDurationMs) {
			errs = append(errs, fmt.Sprintf("weapons.%s: max_ammo, cooldown_ms and effect_duration_ms must not be negative", name))
			continue
		}
		if f := w.SlowdownFactor; f != nil && (*f < 0 || *f > 1) {
			errs = append(errs, fmt.Sprintf("weapons.%s.slowdown_factor must be in [0, 1], got %g", name, *f))
			continue
		}
		if err := p.With(w.Tuning()).Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("weapons.%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDebug(d DebugConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "debug.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("debug.port must be 1-65535, got %d", d.Port))
	}
	if d.StreamRate <= 0 {
		errs = append(errs, fmt.Sprintf("debug.stream_rate must be > 0, got %g", d.StreamRate))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateScripts(s ScriptsConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripts.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with MAZE_ prefix
	v.SetEnvPrefix("MAZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_rate", 60)
	v.SetDefault("simulation.level", "content/levels/corridor.yaml")
	v.SetDefault("simulation.duration", "0s")
	v.SetDefault("simulation.projectile_max_age", "5s")
	v.SetDefault("simulation.projectile_max_range", 0)
	v.SetDefault("simulation.pointer_scale", 0.002)

	v.SetDefault("player.base_speed", 2.5)
	v.SetDefault("player.turn_speed", 3.0)
	v.SetDefault("player.collision_radius", 0.25)
	v.SetDefault("player.sensitivity", 1.0)

	v.SetDefault("enemy.base_speed", 1.2)
	v.SetDefault("enemy.turn_speed", 2.0)
	v.SetDefault("enemy.collision_radius", 0.3)
	v.SetDefault("enemy.sensitivity", 0)

	v.SetDefault("chaser.fire_range", 4)
	v.SetDefault("chaser.aim_tolerance", 0.1)
	v.SetDefault("chaser.hold_distance", 1)
	v.SetDefault("chaser.search", true)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.host", "127.0.0.1")
	v.SetDefault("debug.port", 8089)
	v.SetDefault("debug.allowed_origins", []string{"http://localhost:*", "http://127.0.0.1:*"})
	v.SetDefault("debug.stream_rate", 10)

	v.SetDefault("scripts.dir", "content/scripts")
	v.SetDefault("scripts.instruction_limit", 100_000)
}
