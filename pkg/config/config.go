// Package config loads and validates the run configuration.
//
// Configuration is a TOML document loaded once per run. Every admissible
// interval and threshold is validated at load time: a malformed range is a
// configuration error that aborts the run before any image is attempted,
// never a mid-run failure.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cobotgen/pkg/errors"
)

// Default values applied by ValidateAndSetDefaults.
const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultMaxAttempts bounds the per-image rejection-sampling loop.
	DefaultMaxAttempts = 10

	// DefaultOutputDir is where images, segmentation maps, and the run log go.
	DefaultOutputDir = "output"

	// DefaultLogName is the tabular run log file name.
	DefaultLogName = "rendered_data.csv"
)

// Interval is a closed admissible range [min, max].
type Interval [2]float64

// Min returns the lower bound.
func (iv Interval) Min() float64 { return iv[0] }

// Max returns the upper bound.
func (iv Interval) Max() float64 { return iv[1] }

// Width returns max - min.
func (iv Interval) Width() float64 { return iv[1] - iv[0] }

// Contains reports whether v lies within the closed interval.
func (iv Interval) Contains(v float64) bool { return v >= iv[0] && v <= iv[1] }

// Validate returns a configuration error if min > max.
func (iv Interval) Validate(name string) error {
	if iv[0] > iv[1] {
		return errors.New(errors.ErrCodeConfigRange, "%s: min %g > max %g", name, iv[0], iv[1])
	}
	return nil
}

// PlaneRanges holds admissible intervals for the two horizontal axes.
type PlaneRanges struct {
	X Interval `toml:"x"`
	Y Interval `toml:"y"`
}

// AxisRanges holds admissible intervals for all three axes.
type AxisRanges struct {
	X Interval `toml:"x"`
	Y Interval `toml:"y"`
	Z Interval `toml:"z"`
}

// Config is the complete run configuration.
type Config struct {
	Scene       SceneConfig       `toml:"scene"`
	Images      ImagesConfig      `toml:"images"`
	Camera      CameraConfig      `toml:"camera"`
	Light       LightConfig       `toml:"light"`
	Manipulator ManipulatorConfig `toml:"manipulator"`
	Workpiece   WorkpieceConfig   `toml:"workpiece"`
	Human       HumanConfig       `toml:"human"`
	Safety      SafetyConfig      `toml:"safety"`
	Labels      LabelsConfig      `toml:"labels"`
	Cache       CacheConfig       `toml:"cache"`
	Export      ExportConfig      `toml:"export"`
}

// SceneConfig selects the scene source document.
type SceneConfig struct {
	// Source is the path to the JSON scene description listing the named
	// entities, their default poses, extents, and roles.
	Source string `toml:"source"`
}

// ImagesConfig controls the image-generation loop.
type ImagesConfig struct {
	Count       int    `toml:"count"`
	OutputDir   string `toml:"output_dir"`
	Seed        uint64 `toml:"seed"`
	MaxAttempts int    `toml:"max_attempts"`
}

// CameraConfig controls camera pose sampling.
type CameraConfig struct {
	// Distance is the admissible radius interval of the spherical shell
	// around the table center the camera is sampled from, in meters.
	Distance    Interval `toml:"distance"`
	Elevation   Interval `toml:"elevation"` // degrees above the horizon
	Azimuth     Interval `toml:"azimuth"`   // degrees around the vertical axis
	ImageSize   [2]int   `toml:"image_size"`
	FocalLength float64  `toml:"focal_length"`
}

// LightConfig controls the scene light.
type LightConfig struct {
	Intensity float64    `toml:"intensity"`
	Type      string     `toml:"type"`
	Offset    [3]float64 `toml:"offset"` // placement offset from the camera position
}

// ManipulatorConfig controls TCP randomization.
type ManipulatorConfig struct {
	Enabled bool       `toml:"enabled"`
	Motion  AxisRanges `toml:"motion_range"`
}

// WorkpieceConfig controls workpiece randomization.
type WorkpieceConfig struct {
	Enabled  bool        `toml:"enabled"`
	SizeX    Interval    `toml:"size_x"`
	SizeY    Interval    `toml:"size_y"`
	Position PlaneRanges `toml:"position"`
}

// HumanConfig controls worker randomization.
type HumanConfig struct {
	Enabled  bool        `toml:"enabled"`
	ArmLeft  Interval    `toml:"arm_left"`  // left arm yaw, degrees
	ArmRight Interval    `toml:"arm_right"` // right arm yaw, degrees
	Position PlaneRanges `toml:"position"`
}

// SafetyConfig defines the safety constraints verified on every candidate.
type SafetyConfig struct {
	// MinDistance is the safety-zone distance in meters. It seeds the
	// default hand-vs-gripper constraint when no explicit constraints are
	// configured.
	MinDistance float64 `toml:"min_distance"`

	Constraints []ConstraintConfig `toml:"constraints"`
	Overlaps    []OverlapConfig    `toml:"overlaps"`
}

// ConstraintConfig binds two entity roles to a minimum allowable distance.
type ConstraintConfig struct {
	Name        string  `toml:"name"`
	A           string  `toml:"a"`
	B           string  `toml:"b"`
	MinDistance float64 `toml:"min_distance"`
}

// OverlapConfig names an entity pair whose volumes must never intersect.
type OverlapConfig struct {
	Name string `toml:"name"`
	A    string `toml:"a"`
	B    string `toml:"b"`
}

// LabelsConfig maps entity roles to segmentation category IDs.
// Category 0 is reserved for the background.
type LabelsConfig struct {
	Categories map[string]int `toml:"categories"`
}

// CacheConfig selects the render artifact cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // "none", "file", or "redis"
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// ExportConfig configures optional record sinks beyond the CSV log.
type ExportConfig struct {
	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the MongoDB record exporter.
type MongoConfig struct {
	Enabled    bool   `toml:"enabled"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigValue, err, "decode %s", path)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// ValidateAndSetDefaults applies defaults for optional fields and validates
// every configured interval and threshold. All violations are configuration
// errors; none are recoverable at runtime.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Scene.Source == "" {
		return errors.New(errors.ErrCodeConfigMissing, "scene.source is required")
	}
	if c.Images.Count <= 0 {
		return errors.New(errors.ErrCodeConfigValue, "images.count must be positive, got %d", c.Images.Count)
	}
	if c.Images.OutputDir == "" {
		c.Images.OutputDir = DefaultOutputDir
	}
	if c.Images.Seed == 0 {
		c.Images.Seed = DefaultSeed
	}
	if c.Images.MaxAttempts == 0 {
		c.Images.MaxAttempts = DefaultMaxAttempts
	}
	if c.Images.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeConfigValue, "images.max_attempts must be positive, got %d", c.Images.MaxAttempts)
	}

	if c.Camera.Distance == (Interval{}) {
		c.Camera.Distance = Interval{1.5, 2.5}
	}
	if c.Camera.Elevation == (Interval{}) {
		c.Camera.Elevation = Interval{10, 40}
	}
	if c.Camera.Azimuth == (Interval{}) {
		c.Camera.Azimuth = Interval{-180, 180}
	}
	if c.Camera.ImageSize == [2]int{} {
		c.Camera.ImageSize = [2]int{640, 480}
	}
	if c.Camera.ImageSize[0] <= 0 || c.Camera.ImageSize[1] <= 0 {
		return errors.New(errors.ErrCodeConfigValue, "camera.image_size must be positive, got %dx%d",
			c.Camera.ImageSize[0], c.Camera.ImageSize[1])
	}
	if c.Camera.Distance.Min() <= 0 {
		return errors.New(errors.ErrCodeConfigValue, "camera.distance must be positive, got %g", c.Camera.Distance.Min())
	}

	if c.Light.Offset == [3]float64{} {
		c.Light.Offset = [3]float64{1, -1, 2}
	}

	intervals := []struct {
		name string
		iv   Interval
	}{
		{"camera.distance", c.Camera.Distance},
		{"camera.elevation", c.Camera.Elevation},
		{"camera.azimuth", c.Camera.Azimuth},
		{"manipulator.motion_range.x", c.Manipulator.Motion.X},
		{"manipulator.motion_range.y", c.Manipulator.Motion.Y},
		{"manipulator.motion_range.z", c.Manipulator.Motion.Z},
		{"workpiece.size_x", c.Workpiece.SizeX},
		{"workpiece.size_y", c.Workpiece.SizeY},
		{"workpiece.position.x", c.Workpiece.Position.X},
		{"workpiece.position.y", c.Workpiece.Position.Y},
		{"human.arm_left", c.Human.ArmLeft},
		{"human.arm_right", c.Human.ArmRight},
		{"human.position.x", c.Human.Position.X},
		{"human.position.y", c.Human.Position.Y},
	}
	for _, entry := range intervals {
		if err := entry.iv.Validate(entry.name); err != nil {
			return err
		}
	}

	// No explicit constraints: fall back to the classic safety zone between
	// the worker's hand and the gripper mounted at the TCP.
	if len(c.Safety.Constraints) == 0 {
		if c.Safety.MinDistance <= 0 {
			return errors.New(errors.ErrCodeConfigValue,
				"safety.min_distance must be positive, got %g", c.Safety.MinDistance)
		}
		c.Safety.Constraints = []ConstraintConfig{
			{Name: "hand-gripper", A: "worker_hand", B: "gripper", MinDistance: c.Safety.MinDistance},
		}
	}
	for i, sc := range c.Safety.Constraints {
		if sc.A == "" || sc.B == "" {
			return errors.New(errors.ErrCodeConfigMissing, "safety.constraints[%d]: both roles are required", i)
		}
		if sc.MinDistance <= 0 {
			return errors.New(errors.ErrCodeConfigValue,
				"safety.constraints[%d] (%s): min_distance must be positive, got %g", i, sc.Name, sc.MinDistance)
		}
	}
	if len(c.Safety.Overlaps) == 0 {
		c.Safety.Overlaps = []OverlapConfig{
			{Name: "workpiece-worker", A: "workpiece", B: "worker"},
			{Name: "workpiece-manipulator", A: "workpiece", B: "manipulator"},
		}
	}
	for i, ov := range c.Safety.Overlaps {
		if ov.A == "" || ov.B == "" {
			return errors.New(errors.ErrCodeConfigMissing, "safety.overlaps[%d]: both roles are required", i)
		}
	}

	switch c.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		return errors.New(errors.ErrCodeConfigValue, "cache.backend must be none, file, or redis, got %q", c.Cache.Backend)
	}

	if c.Export.Mongo.Enabled {
		if c.Export.Mongo.URI == "" {
			return errors.New(errors.ErrCodeConfigMissing, "export.mongo.uri is required when export.mongo.enabled")
		}
		if c.Export.Mongo.Database == "" {
			c.Export.Mongo.Database = "cobotgen"
		}
		if c.Export.Mongo.Collection == "" {
			c.Export.Mongo.Collection = "records"
		}
	}

	return nil
}
