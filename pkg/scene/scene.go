// Package scene models the collaborative cell: the named entities loaded from
// a scene source, their roles, poses, and collision-approximation volumes.
//
// The scene is a single shared mutable structure. Only one accepted
// configuration may occupy it at render time, which is why the pipeline is
// strictly sequential per image.
package scene

import (
	"sort"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/geometry"
)

// Role identifies what part a scene entity plays in the cell.
type Role string

// Known entity roles.
const (
	RoleTable       Role = "table"
	RoleWorkpiece   Role = "workpiece"
	RoleWorker      Role = "worker"
	RoleWorkerHand  Role = "worker_hand"
	RoleManipulator Role = "manipulator"
	RoleTCP         Role = "tcp"
	RoleGripper     Role = "gripper"
	RoleEnvironment Role = "environment"
)

var knownRoles = map[Role]bool{
	RoleTable:       true,
	RoleWorkpiece:   true,
	RoleWorker:      true,
	RoleWorkerHand:  true,
	RoleManipulator: true,
	RoleTCP:         true,
	RoleGripper:     true,
	RoleEnvironment: true,
}

// ShapeKind selects the collision-approximation volume of an entity.
type ShapeKind string

// Supported shape kinds.
const (
	ShapePoint   ShapeKind = "point"
	ShapeSphere  ShapeKind = "sphere"
	ShapeCapsule ShapeKind = "capsule"
	ShapeBox     ShapeKind = "box"
)

// Shape describes an entity's volume in its local frame, centered at the
// entity position. Capsules extend along Axis; Length is tip to tip.
type Shape struct {
	Kind       ShapeKind
	HalfExtent r3.Vector // box half sizes
	Radius     float64   // sphere, capsule
	Length     float64   // capsule, tip to tip
	Axis       r3.Vector // capsule direction, defaults to +Z
}

func (s Shape) validate(entity string) error {
	switch s.Kind {
	case ShapePoint:
	case ShapeSphere:
		if s.Radius <= 0 {
			return errors.New(errors.ErrCodeSceneSource, "entity %s: sphere radius must be positive", entity)
		}
	case ShapeCapsule:
		if s.Radius <= 0 || s.Length < 2*s.Radius {
			return errors.New(errors.ErrCodeSceneSource,
				"entity %s: capsule needs radius > 0 and length >= 2*radius", entity)
		}
	case ShapeBox:
		if s.HalfExtent.X <= 0 || s.HalfExtent.Y <= 0 || s.HalfExtent.Z <= 0 {
			return errors.New(errors.ErrCodeSceneSource, "entity %s: box half extents must be positive", entity)
		}
	default:
		return errors.New(errors.ErrCodeSceneSource, "entity %s: unknown shape kind %q", entity, s.Kind)
	}
	return nil
}

// Entity is a named scene participant with a pose and a bounding volume.
type Entity struct {
	Name       string
	Role       Role
	CategoryID int

	Position r3.Vector
	Yaw      float64   // degrees about the vertical axis
	Scale    r3.Vector // per-axis scale, applied to box extents

	Shape Shape
}

// SetPosition moves the entity.
func (e *Entity) SetPosition(p r3.Vector) { e.Position = p }

// Volume returns the entity's world-frame collision volume at its current
// pose. Boxes honor Scale and Yaw (via the enclosing axis-aligned box);
// capsules and spheres are placed at the entity position.
func (e *Entity) Volume() geometry.Volume {
	switch e.Shape.Kind {
	case ShapeSphere:
		return geometry.Sphere{Center: e.Position, Radius: e.Shape.Radius}
	case ShapeCapsule:
		axis := e.Shape.Axis
		if axis.Norm() == 0 {
			axis = r3.Vector{Z: 1}
		}
		axis = axis.Normalize()
		half := e.Shape.Length/2 - e.Shape.Radius
		return geometry.Capsule{
			A:      e.Position.Sub(axis.Mul(half)),
			B:      e.Position.Add(axis.Mul(half)),
			Radius: e.Shape.Radius,
		}
	case ShapeBox:
		scale := e.Scale
		if scale == (r3.Vector{}) {
			scale = r3.Vector{X: 1, Y: 1, Z: 1}
		}
		he := r3.Vector{
			X: e.Shape.HalfExtent.X * scale.X,
			Y: e.Shape.HalfExtent.Y * scale.Y,
			Z: e.Shape.HalfExtent.Z * scale.Z,
		}
		return geometry.YawAABB(e.Position, he, e.Yaw)
	default:
		return geometry.Point{P: e.Position}
	}
}

// Scene is the set of named entities loaded from a scene source, indexed by
// name and by role.
type Scene struct {
	Name string

	entities map[string]*Entity
	byRole   map[Role]*Entity
}

// New builds a scene from entities. Duplicate names or roles are scene-source
// errors: the pipeline addresses entities by role, so each role must resolve
// to exactly one entity.
func New(name string, entities []*Entity) (*Scene, error) {
	s := &Scene{
		Name:     name,
		entities: make(map[string]*Entity, len(entities)),
		byRole:   make(map[Role]*Entity, len(entities)),
	}
	for _, e := range entities {
		if !knownRoles[e.Role] {
			return nil, errors.New(errors.ErrCodeSceneSource, "entity %s: unknown role %q", e.Name, e.Role)
		}
		if _, dup := s.entities[e.Name]; dup {
			return nil, errors.New(errors.ErrCodeSceneSource, "duplicate entity name %q", e.Name)
		}
		if _, dup := s.byRole[e.Role]; dup {
			return nil, errors.New(errors.ErrCodeSceneSource, "duplicate role %q", e.Role)
		}
		if err := e.Shape.validate(e.Name); err != nil {
			return nil, err
		}
		s.entities[e.Name] = e
		s.byRole[e.Role] = e
	}
	return s, nil
}

// ByRole returns the entity filling the given role.
func (s *Scene) ByRole(r Role) (*Entity, bool) {
	e, ok := s.byRole[r]
	return e, ok
}

// ByName returns the entity with the given name.
func (s *Scene) ByName(name string) (*Entity, bool) {
	e, ok := s.entities[name]
	return e, ok
}

// Entities returns all entities sorted by name for deterministic iteration.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ApplyCategories assigns segmentation category IDs by role. Roles absent
// from the mapping keep category 0 (background).
func (s *Scene) ApplyCategories(categories map[string]int) {
	for role, id := range categories {
		if e, ok := s.byRole[Role(role)]; ok {
			e.CategoryID = id
		}
	}
}

// Volumes returns the current world-frame volume of every entity, keyed by
// role. This is the input the constraint evaluator consumes.
func (s *Scene) Volumes() map[Role]geometry.Volume {
	out := make(map[Role]geometry.Volume, len(s.byRole))
	for role, e := range s.byRole {
		out[role] = e.Volume()
	}
	return out
}
