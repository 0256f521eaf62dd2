package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cobotgen/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Scene:  SceneConfig{Source: "scene.json"},
		Images: ImagesConfig{Count: 5},
		Safety: SafetyConfig{MinDistance: 0.4},
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}

	if cfg.Images.Seed != DefaultSeed {
		t.Errorf("Seed default = %d, want %d", cfg.Images.Seed, DefaultSeed)
	}
	if cfg.Images.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts default = %d, want %d", cfg.Images.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.Images.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir default = %q, want %q", cfg.Images.OutputDir, DefaultOutputDir)
	}
	if cfg.Camera.Elevation != (Interval{10, 40}) {
		t.Errorf("Elevation default = %v", cfg.Camera.Elevation)
	}
	if cfg.Light.Offset != [3]float64{1, -1, 2} {
		t.Errorf("Light offset default = %v", cfg.Light.Offset)
	}

	// Safety defaults: one hand-gripper constraint seeded from min_distance.
	if len(cfg.Safety.Constraints) != 1 {
		t.Fatalf("Constraints default count = %d, want 1", len(cfg.Safety.Constraints))
	}
	sc := cfg.Safety.Constraints[0]
	if sc.A != "worker_hand" || sc.B != "gripper" || sc.MinDistance != 0.4 {
		t.Errorf("default constraint = %+v", sc)
	}
	if len(cfg.Safety.Overlaps) != 2 {
		t.Errorf("Overlaps default count = %d, want 2", len(cfg.Safety.Overlaps))
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode errors.Code
	}{
		{"missing scene source", func(c *Config) { c.Scene.Source = "" }, errors.ErrCodeConfigMissing},
		{"zero image count", func(c *Config) { c.Images.Count = 0 }, errors.ErrCodeConfigValue},
		{"negative max attempts", func(c *Config) { c.Images.MaxAttempts = -1 }, errors.ErrCodeConfigValue},
		{"inverted motion range", func(c *Config) { c.Manipulator.Motion.X = Interval{1, -1} }, errors.ErrCodeConfigRange},
		{"inverted workpiece size", func(c *Config) { c.Workpiece.SizeX = Interval{2, 1} }, errors.ErrCodeConfigRange},
		{"inverted arm range", func(c *Config) { c.Human.ArmLeft = Interval{30, -30} }, errors.ErrCodeConfigRange},
		{"zero safety distance", func(c *Config) { c.Safety.MinDistance = 0 }, errors.ErrCodeConfigValue},
		{"negative safety distance", func(c *Config) { c.Safety.MinDistance = -0.1 }, errors.ErrCodeConfigValue},
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, errors.ErrCodeConfigValue},
		{"mongo without uri", func(c *Config) { c.Export.Mongo.Enabled = true }, errors.ErrCodeConfigMissing},
		{
			"constraint without roles",
			func(c *Config) {
				c.Safety.Constraints = []ConstraintConfig{{Name: "x", MinDistance: 0.1}}
			},
			errors.ErrCodeConfigMissing,
		},
		{
			"constraint with zero threshold",
			func(c *Config) {
				c.Safety.Constraints = []ConstraintConfig{{Name: "x", A: "a", B: "b"}}
			},
			errors.ErrCodeConfigValue,
		},
	}

	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		err := cfg.ValidateAndSetDefaults()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, tt.wantCode) {
			t.Errorf("%s: code = %v, want %v (err: %v)", tt.name, errors.GetCode(err), tt.wantCode, err)
		}
		if !errors.IsConfiguration(err) {
			t.Errorf("%s: should be a configuration error", tt.name)
		}
	}
}

func TestInterval(t *testing.T) {
	iv := Interval{-1, 2}
	if iv.Min() != -1 || iv.Max() != 2 || iv.Width() != 3 {
		t.Errorf("interval accessors: %v", iv)
	}
	if !iv.Contains(-1) || !iv.Contains(2) || !iv.Contains(0.5) {
		t.Error("closed interval must contain its bounds")
	}
	if iv.Contains(-1.001) || iv.Contains(2.001) {
		t.Error("interval must not contain values outside bounds")
	}
	if err := iv.Validate("iv"); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if err := (Interval{3, 1}).Validate("iv"); err == nil {
		t.Error("inverted interval must be rejected")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	doc := `
[scene]
source = "cell.json"

[images]
count = 3
seed = 7
max_attempts = 4

[camera]
distance = [1.0, 2.0]

[manipulator]
enabled = true
[manipulator.motion_range]
x = [-0.4, 0.4]
y = [-0.4, 0.4]
z = [0.2, 0.8]

[workpiece]
enabled = true
size_x = [0.5, 1.5]
size_y = [0.5, 1.5]
[workpiece.position]
x = [-0.3, 0.3]
y = [-0.3, 0.3]

[human]
enabled = true
arm_left = [-45.0, 45.0]
arm_right = [-45.0, 45.0]
[human.position]
x = [-1.0, -0.5]
y = [-0.5, 0.5]

[safety]
min_distance = 0.4

[labels.categories]
table = 1
workpiece = 2
worker = 3
manipulator = 4
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Images.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Images.Seed)
	}
	if cfg.Manipulator.Motion.Z != (Interval{0.2, 0.8}) {
		t.Errorf("motion z = %v", cfg.Manipulator.Motion.Z)
	}
	if cfg.Labels.Categories["workpiece"] != 2 {
		t.Errorf("categories = %v", cfg.Labels.Categories)
	}

	// Malformed range fails at load, not later.
	bad := strings.Replace(doc, "x = [-0.4, 0.4]", "x = [0.4, -0.4]", 1)
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeConfigRange) {
		t.Errorf("inverted range: err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("missing file should be a configuration error, got %v", err)
	}
}
