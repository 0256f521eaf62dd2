// Package sampler draws randomized scene configurations.
//
// All randomness flows through a single explicitly seeded source, so a fixed
// seed reproduces the exact attempt sequence of a previous run. The sampler
// owns no state beyond that source; candidate poses are computed from the
// immutable rig captured at scene load, never from the mutated scene.
package sampler

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// Pose is one sampled placement for a single entity.
type Pose struct {
	Position r3.Vector
	Yaw      float64   // degrees about the vertical axis
	Scale    r3.Vector // per-axis scale; zero value means unchanged

	// Arm yaws are only meaningful for the worker pose.
	ArmLeftYaw  float64
	ArmRightYaw float64
}

// Candidate is a complete sampled pose set for one attempt, keyed by role.
type Candidate map[scene.Role]Pose

// Sampler draws uniform values from configured closed intervals.
type Sampler struct {
	rng *rand.Rand
}

// New creates a sampler seeded for reproducible randomness. The same seed
// produces the identical draw sequence.
func New(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Uniform draws a value from the closed interval. Both bounds are reachable:
// a zero-width interval always returns its single admissible value.
func (s *Sampler) Uniform(iv config.Interval) float64 {
	if iv.Width() == 0 {
		return iv.Min()
	}
	return iv.Min() + s.rng.Float64()*iv.Width()
}

// Rig captures the fixed geometry of the cell that sampling must preserve:
// default entity poses and the rigid offsets that attach the hand to the
// worker and the gripper to the TCP. It is built once from the freshly
// loaded scene and never mutated afterward.
type Rig struct {
	Defaults      map[scene.Role]Pose
	HandOffset    r3.Vector // worker position -> hand position at rest
	GripperOffset r3.Vector // TCP position -> gripper position
	TableCenter   r3.Vector // aim point for the camera
	TableTop      float64   // table surface height
}

// NewRig derives the rig from the loaded scene.
func NewRig(sc *scene.Scene) (*Rig, error) {
	rig := &Rig{Defaults: make(map[scene.Role]Pose)}

	for _, e := range sc.Entities() {
		rig.Defaults[e.Role] = Pose{Position: e.Position, Yaw: e.Yaw, Scale: e.Scale}
	}

	required := []scene.Role{scene.RoleTable, scene.RoleWorker, scene.RoleWorkerHand, scene.RoleTCP, scene.RoleGripper}
	for _, role := range required {
		if _, ok := rig.Defaults[role]; !ok {
			return nil, errors.New(errors.ErrCodeRoleNotFound, "scene has no entity with role %q", role)
		}
	}

	worker := rig.Defaults[scene.RoleWorker]
	hand := rig.Defaults[scene.RoleWorkerHand]
	rig.HandOffset = hand.Position.Sub(worker.Position)

	tcp := rig.Defaults[scene.RoleTCP]
	gripper := rig.Defaults[scene.RoleGripper]
	rig.GripperOffset = gripper.Position.Sub(tcp.Position)

	table, _ := sc.ByRole(scene.RoleTable)
	bounds := table.Volume().Bounds()
	rig.TableTop = bounds.Max.Z
	rig.TableCenter = r3.Vector{X: table.Position.X, Y: table.Position.Y, Z: bounds.Max.Z}

	return rig, nil
}

// SampleCandidate draws one complete candidate pose set. Entities with
// randomization disabled hold their rig default. Derived entities (hand,
// gripper) follow their anchors rigidly; the hand additionally swings around
// the worker's vertical axis with the sampled right-arm yaw.
func (s *Sampler) SampleCandidate(rig *Rig, cfg *config.Config) Candidate {
	cand := Candidate{}

	// Manipulator TCP.
	tcp := rig.Defaults[scene.RoleTCP]
	if cfg.Manipulator.Enabled {
		tcp.Position = r3.Vector{
			X: s.Uniform(cfg.Manipulator.Motion.X),
			Y: s.Uniform(cfg.Manipulator.Motion.Y),
			Z: s.Uniform(cfg.Manipulator.Motion.Z),
		}
	}
	cand[scene.RoleTCP] = tcp

	// Gripper follows the TCP rigidly.
	gripper := rig.Defaults[scene.RoleGripper]
	gripper.Position = tcp.Position.Add(rig.GripperOffset)
	cand[scene.RoleGripper] = gripper

	// Workpiece: size, z-rotation, position on the table surface.
	wp := rig.Defaults[scene.RoleWorkpiece]
	if cfg.Workpiece.Enabled {
		wp.Scale = r3.Vector{
			X: s.Uniform(cfg.Workpiece.SizeX),
			Y: s.Uniform(cfg.Workpiece.SizeY),
			Z: 1,
		}
		wp.Yaw = s.Uniform(config.Interval{0, 360})
		wp.Position = r3.Vector{
			X: s.Uniform(cfg.Workpiece.Position.X),
			Y: s.Uniform(cfg.Workpiece.Position.Y),
			Z: wp.Position.Z,
		}
	}
	cand[scene.RoleWorkpiece] = wp

	// Worker: floor position and arm yaws.
	worker := rig.Defaults[scene.RoleWorker]
	if cfg.Human.Enabled {
		worker.Position = r3.Vector{
			X: s.Uniform(cfg.Human.Position.X),
			Y: s.Uniform(cfg.Human.Position.Y),
			Z: worker.Position.Z,
		}
		worker.ArmLeftYaw = s.Uniform(cfg.Human.ArmLeft)
		worker.ArmRightYaw = s.Uniform(cfg.Human.ArmRight)
	}
	cand[scene.RoleWorker] = worker

	// Hand swings around the shoulder with the right arm yaw.
	hand := rig.Defaults[scene.RoleWorkerHand]
	hand.Position = worker.Position.Add(rotateZ(rig.HandOffset, worker.ArmRightYaw))
	cand[scene.RoleWorkerHand] = hand

	return cand
}

// Apply writes a candidate's poses onto the scene entities.
func Apply(sc *scene.Scene, cand Candidate) {
	for role, pose := range cand {
		e, ok := sc.ByRole(role)
		if !ok {
			continue
		}
		e.Position = pose.Position
		e.Yaw = pose.Yaw
		if pose.Scale != (r3.Vector{}) {
			e.Scale = pose.Scale
		}
	}
}

// rotateZ rotates v by deg degrees about the vertical axis.
func rotateZ(v r3.Vector, deg float64) r3.Vector {
	rad := deg * math.Pi / 180
	c, sn := math.Cos(rad), math.Sin(rad)
	return r3.Vector{
		X: v.X*c - v.Y*sn,
		Y: v.X*sn + v.Y*c,
		Z: v.Z,
	}
}
