package constraint

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/geometry"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// testVolumes builds a small world with a known hand-to-gripper gap.
func testVolumes(handX float64) map[scene.Role]geometry.Volume {
	return map[scene.Role]geometry.Volume{
		scene.RoleWorkerHand:  geometry.Sphere{Center: r3.Vector{X: handX, Z: 1}, Radius: 0.05},
		scene.RoleGripper:     geometry.Sphere{Center: r3.Vector{X: 0, Z: 1}, Radius: 0.05},
		scene.RoleWorkpiece:   geometry.NewAABB(r3.Vector{X: 0, Y: 0, Z: 0.85}, r3.Vector{X: 0.15, Y: 0.1, Z: 0.05}),
		scene.RoleWorker:      geometry.Capsule{A: r3.Vector{X: -1.2, Z: 0.3}, B: r3.Vector{X: -1.2, Z: 1.6}, Radius: 0.25},
		scene.RoleManipulator: geometry.Capsule{A: r3.Vector{X: 0.6, Y: 0.5, Z: 0.1}, B: r3.Vector{X: 0.6, Y: 0.5, Z: 1.2}, Radius: 0.12},
	}
}

func handGripper(min float64) []SafetyConstraint {
	return []SafetyConstraint{{Name: "hand-gripper", A: scene.RoleWorkerHand, B: scene.RoleGripper, MinDistance: min}}
}

func TestNewEvaluatorRejections(t *testing.T) {
	tests := []struct {
		name        string
		constraints []SafetyConstraint
		overlaps    []OverlapRule
	}{
		{"zero threshold", handGripper(0), nil},
		{"negative threshold", handGripper(-0.1), nil},
		{
			"missing constraint role",
			[]SafetyConstraint{{Name: "x", A: scene.RoleWorkerHand, MinDistance: 0.4}},
			nil,
		},
		{
			"missing overlap role",
			nil,
			[]OverlapRule{{Name: "x", A: scene.RoleWorkpiece}},
		},
	}

	for _, tt := range tests {
		if _, err := NewEvaluator(tt.constraints, tt.overlaps); err == nil {
			t.Errorf("%s: expected error", tt.name)
		} else if !errors.Is(err, errors.ErrCodeConfigValue) {
			t.Errorf("%s: code = %v, want config value error", tt.name, errors.GetCode(err))
		}
	}
}

func TestEvaluateVerdicts(t *testing.T) {
	ev, err := NewEvaluator(handGripper(0.4), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	// Gap of 0.9 between the sphere surfaces: safe.
	res, err := ev.Evaluate(testVolumes(1.0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Safe {
		t.Errorf("verdict = %v, want SAFE", res.Verdict)
	}
	if res.ViolatingPair != "" {
		t.Errorf("safe evaluation named pair %q", res.ViolatingPair)
	}
	if math.Abs(res.MinDistance-0.9) > 1e-9 {
		t.Errorf("MinDistance = %v, want 0.9", res.MinDistance)
	}

	// Gap of 0.2: violates the 0.4 threshold.
	res, err = ev.Evaluate(testVolumes(0.3))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Violation {
		t.Errorf("verdict = %v, want VIOLATION", res.Verdict)
	}
	if res.ViolatingPair != "hand-gripper" {
		t.Errorf("ViolatingPair = %q", res.ViolatingPair)
	}
}

func TestEvaluateThresholdIsStrict(t *testing.T) {
	ev, err := NewEvaluator(handGripper(0.4), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	// Surfaces exactly at the threshold: distance equal to the minimum is
	// not a violation.
	res, err := ev.Evaluate(testVolumes(0.5))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Safe {
		t.Errorf("distance == threshold should be safe, got %v", res.Verdict)
	}
}

func TestEvaluatePenetrationClampsToZero(t *testing.T) {
	ev, err := NewEvaluator(handGripper(0.4), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	// Spheres overlap outright.
	res, err := ev.Evaluate(testVolumes(0.05))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Violation {
		t.Errorf("verdict = %v, want VIOLATION", res.Verdict)
	}
	if res.MinDistance != 0 {
		t.Errorf("penetrating distance = %v, want clamped 0", res.MinDistance)
	}
	if len(res.Measurements) != 1 || res.Measurements[0].Distance != 0 {
		t.Errorf("measurement = %+v, want zero distance", res.Measurements)
	}
}

func TestEvaluateOverlapAlwaysViolates(t *testing.T) {
	// No distance constraints at all: overlap rules still classify an
	// intersecting pair as a violation.
	ev, err := NewEvaluator(nil, []OverlapRule{
		{Name: "workpiece-worker", A: scene.RoleWorkpiece, B: scene.RoleWorker},
	})
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	vols := testVolumes(1.0)
	// Park the worker inside the workpiece box.
	vols[scene.RoleWorker] = geometry.Capsule{
		A: r3.Vector{X: 0, Z: 0.5}, B: r3.Vector{X: 0, Z: 1.5}, Radius: 0.25,
	}

	res, err := ev.Evaluate(vols)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Violation {
		t.Errorf("verdict = %v, want VIOLATION", res.Verdict)
	}
	if res.ViolatingPair != "workpiece-worker" {
		t.Errorf("ViolatingPair = %q", res.ViolatingPair)
	}
}

func TestEvaluateOverlapOutranksDistance(t *testing.T) {
	ev, err := NewEvaluator(
		handGripper(0.4),
		[]OverlapRule{{Name: "workpiece-worker", A: scene.RoleWorkpiece, B: scene.RoleWorker}},
	)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	vols := testVolumes(0.3) // hand-gripper violated at 0.2
	vols[scene.RoleWorker] = geometry.Capsule{
		A: r3.Vector{X: 0, Z: 0.5}, B: r3.Vector{X: 0, Z: 1.5}, Radius: 0.25,
	}

	res, err := ev.Evaluate(vols)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.ViolatingPair != "workpiece-worker" {
		t.Errorf("ViolatingPair = %q, overlap should outrank the distance violation", res.ViolatingPair)
	}
}

func TestEvaluateWorstPairWins(t *testing.T) {
	// Two violated constraints; the one with the smaller measured distance
	// is the reported pair.
	ev, err := NewEvaluator([]SafetyConstraint{
		{Name: "hand-gripper", A: scene.RoleWorkerHand, B: scene.RoleGripper, MinDistance: 2.0},
		{Name: "worker-manipulator", A: scene.RoleWorker, B: scene.RoleManipulator, MinDistance: 5.0},
	}, nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	res, err := ev.Evaluate(testVolumes(1.0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Violation {
		t.Fatalf("verdict = %v, want VIOLATION", res.Verdict)
	}
	// hand-gripper gap is 0.9, worker-manipulator is larger than that but
	// still under its 5.0 threshold.
	if res.ViolatingPair != "hand-gripper" {
		t.Errorf("ViolatingPair = %q, want the smallest-distance violation", res.ViolatingPair)
	}
	if len(res.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2", len(res.Measurements))
	}
	for _, m := range res.Measurements {
		if !m.Violated {
			t.Errorf("constraint %s should be violated", m.Name)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	ev, err := NewEvaluator(handGripper(0.4), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	vols := testVolumes(0.3)
	first, err := ev.Evaluate(vols)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for range 50 {
		res, err := ev.Evaluate(vols)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if res.Verdict != first.Verdict || res.MinDistance != first.MinDistance ||
			res.ViolatingPair != first.ViolatingPair {
			t.Fatalf("evaluation diverged: %+v vs %+v", res, first)
		}
	}
}

func TestEvaluateMissingRole(t *testing.T) {
	ev, err := NewEvaluator(handGripper(0.4), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	vols := testVolumes(1.0)
	delete(vols, scene.RoleGripper)

	if _, err := ev.Evaluate(vols); err == nil {
		t.Error("expected error for missing role")
	} else if !errors.Is(err, errors.ErrCodeRoleNotFound) {
		t.Errorf("code = %v, want role not found", errors.GetCode(err))
	}
}

func TestEvaluateNoConstraints(t *testing.T) {
	ev, err := NewEvaluator(nil, nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	res, err := ev.Evaluate(testVolumes(1.0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Verdict != Safe || res.MinDistance != 0 {
		t.Errorf("empty rule set: %+v", res)
	}
}
