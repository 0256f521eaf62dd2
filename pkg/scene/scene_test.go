package scene

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/geometry"
)

const testSceneJSON = `{
  "name": "cell-a",
  "entities": [
    {"name": "Table", "role": "table", "position": [0, 0, 0.4],
     "shape": {"type": "box", "half_extent": [0.9, 0.6, 0.4]}},
    {"name": "Workpiece", "role": "workpiece", "position": [0, 0, 0.85],
     "shape": {"type": "box", "half_extent": [0.15, 0.1, 0.05]}},
    {"name": "Worker", "role": "worker", "position": [-1.2, 0, 0.9],
     "shape": {"type": "capsule", "radius": 0.25, "length": 1.8}},
    {"name": "Hand", "role": "worker_hand", "position": [-0.8, 0.2, 1.0],
     "shape": {"type": "sphere", "radius": 0.06}},
    {"name": "Panda", "role": "manipulator", "position": [0.6, 0.5, 0.6],
     "shape": {"type": "capsule", "radius": 0.12, "length": 1.2}},
    {"name": "TCP", "role": "tcp", "position": [0.3, 0.2, 1.0],
     "shape": {"type": "point"}},
    {"name": "Gripper", "role": "gripper", "position": [0.3, 0.2, 0.95],
     "shape": {"type": "sphere", "radius": 0.08}}
  ]
}`

func testScene(t *testing.T) *Scene {
	t.Helper()
	s, err := Load([]byte(testSceneJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := testScene(t)

	if s.Name != "cell-a" {
		t.Errorf("Name = %q", s.Name)
	}
	if len(s.Entities()) != 7 {
		t.Errorf("entity count = %d, want 7", len(s.Entities()))
	}

	table, ok := s.ByRole(RoleTable)
	if !ok {
		t.Fatal("table role missing")
	}
	if table.Name != "Table" {
		t.Errorf("table name = %q", table.Name)
	}
	if table.Position.Z != 0.4 {
		t.Errorf("table z = %v", table.Position.Z)
	}

	if _, ok := s.ByName("TCP"); !ok {
		t.Error("ByName(TCP) missing")
	}
}

func TestLoadRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty entities", `{"name": "x", "entities": []}`},
		{"unknown role", `{"entities": [{"name": "A", "role": "spaceship", "position": [0,0,0], "shape": {"type": "point"}}]}`},
		{"unknown shape", `{"entities": [{"name": "A", "role": "table", "position": [0,0,0], "shape": {"type": "blob"}}]}`},
		{"bad capsule", `{"entities": [{"name": "A", "role": "worker", "position": [0,0,0], "shape": {"type": "capsule", "radius": 0.5, "length": 0.5}}]}`},
		{"nameless entity", `{"entities": [{"role": "table", "position": [0,0,0], "shape": {"type": "point"}}]}`},
		{"not json", `not json at all`},
		{
			"duplicate role",
			`{"entities": [
				{"name": "A", "role": "table", "position": [0,0,0], "shape": {"type": "point"}},
				{"name": "B", "role": "table", "position": [0,0,0], "shape": {"type": "point"}}
			]}`,
		},
	}

	for _, tt := range tests {
		_, err := Load([]byte(tt.doc))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, errors.ErrCodeSceneSource) {
			t.Errorf("%s: code = %v, want scene source error", tt.name, errors.GetCode(err))
		}
	}
}

func TestEntityVolume(t *testing.T) {
	s := testScene(t)

	table, _ := s.ByRole(RoleTable)
	box, ok := table.Volume().(geometry.AABB)
	if !ok {
		t.Fatalf("table volume is %T, want AABB", table.Volume())
	}
	if he := box.HalfExtent(); he.X != 0.9 || he.Y != 0.6 || he.Z != 0.4 {
		t.Errorf("table half extent = %v", he)
	}

	worker, _ := s.ByRole(RoleWorker)
	capVol, ok := worker.Volume().(geometry.Capsule)
	if !ok {
		t.Fatalf("worker volume is %T, want Capsule", worker.Volume())
	}
	// Tip-to-tip length 1.8 with radius 0.25 leaves a 1.3 segment.
	if got := capVol.B.Sub(capVol.A).Norm(); got < 1.299 || got > 1.301 {
		t.Errorf("worker segment length = %v, want 1.3", got)
	}

	tcp, _ := s.ByRole(RoleTCP)
	if _, ok := tcp.Volume().(geometry.Point); !ok {
		t.Errorf("tcp volume is %T, want Point", tcp.Volume())
	}
}

func TestVolumeFollowsPose(t *testing.T) {
	s := testScene(t)
	wp, _ := s.ByRole(RoleWorkpiece)

	before := wp.Volume().(geometry.AABB).Center()
	wp.SetPosition(wp.Position.Add(r3.Vector{X: 0.5}))
	after := wp.Volume().(geometry.AABB).Center()

	if after.Sub(before).X != 0.5 {
		t.Errorf("volume did not follow position: %v -> %v", before, after)
	}

	// Scaling widens the box.
	wp.Scale = r3.Vector{X: 2, Y: 1, Z: 1}
	he := wp.Volume().(geometry.AABB).HalfExtent()
	if he.X != 0.3 {
		t.Errorf("scaled half extent X = %v, want 0.3", he.X)
	}

	// Yaw of 90 degrees swaps the footprint axes.
	wp.Scale = r3.Vector{X: 1, Y: 1, Z: 1}
	wp.Yaw = 90
	he = wp.Volume().(geometry.AABB).HalfExtent()
	if he.X < 0.0999 || he.X > 0.1001 {
		t.Errorf("yawed half extent X = %v, want 0.1", he.X)
	}
}

func TestApplyCategories(t *testing.T) {
	s := testScene(t)
	s.ApplyCategories(map[string]int{
		"table":     1,
		"workpiece": 2,
		"worker":    3,
		"spaceship": 9, // unknown role, ignored
	})

	table, _ := s.ByRole(RoleTable)
	if table.CategoryID != 1 {
		t.Errorf("table category = %d", table.CategoryID)
	}
	wp, _ := s.ByRole(RoleWorkpiece)
	if wp.CategoryID != 2 {
		t.Errorf("workpiece category = %d", wp.CategoryID)
	}
	tcp, _ := s.ByRole(RoleTCP)
	if tcp.CategoryID != 0 {
		t.Errorf("tcp category = %d, want background 0", tcp.CategoryID)
	}
}

func TestVolumes(t *testing.T) {
	s := testScene(t)
	vols := s.Volumes()
	if len(vols) != 7 {
		t.Errorf("volumes count = %d, want 7", len(vols))
	}
	if _, ok := vols[RoleWorkerHand].(geometry.Sphere); !ok {
		t.Errorf("hand volume is %T, want Sphere", vols[RoleWorkerHand])
	}
}
