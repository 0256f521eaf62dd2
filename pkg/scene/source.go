package scene

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"

	"github.com/matzehuels/cobotgen/pkg/errors"
)

// sourceDoc is the on-disk JSON layout of a scene description.
type sourceDoc struct {
	Name     string       `json:"name"`
	Entities []sourceItem `json:"entities"`
}

type sourceItem struct {
	Name     string      `json:"name"`
	Role     string      `json:"role"`
	Position [3]float64  `json:"position"`
	Yaw      float64     `json:"yaw,omitempty"`
	Scale    *[3]float64 `json:"scale,omitempty"`
	Shape    sourceShape `json:"shape"`
}

type sourceShape struct {
	Type       string      `json:"type"`
	HalfExtent *[3]float64 `json:"half_extent,omitempty"`
	Radius     float64     `json:"radius,omitempty"`
	Length     float64     `json:"length,omitempty"`
	Axis       *[3]float64 `json:"axis,omitempty"`
}

// LoadFile reads a JSON scene description and builds the scene. An unreadable
// or malformed source is a configuration error that aborts the run.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneSource, err, "read scene source %s", path)
	}
	return Load(data)
}

// Load parses a JSON scene description.
func Load(data []byte) (*Scene, error) {
	var doc sourceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneSource, err, "parse scene source")
	}
	if len(doc.Entities) == 0 {
		return nil, errors.New(errors.ErrCodeSceneSource, "scene source lists no entities")
	}

	entities := make([]*Entity, 0, len(doc.Entities))
	for _, item := range doc.Entities {
		e := &Entity{
			Name:     item.Name,
			Role:     Role(item.Role),
			Position: vec(item.Position),
			Yaw:      item.Yaw,
			Scale:    r3.Vector{X: 1, Y: 1, Z: 1},
			Shape: Shape{
				Kind:   ShapeKind(item.Shape.Type),
				Radius: item.Shape.Radius,
				Length: item.Shape.Length,
			},
		}
		if e.Name == "" {
			return nil, errors.New(errors.ErrCodeSceneSource, "entity with role %q has no name", item.Role)
		}
		if item.Scale != nil {
			e.Scale = vec(*item.Scale)
		}
		if item.Shape.HalfExtent != nil {
			e.Shape.HalfExtent = vec(*item.Shape.HalfExtent)
		}
		if item.Shape.Axis != nil {
			e.Shape.Axis = vec(*item.Shape.Axis)
		}
		entities = append(entities, e)
	}

	return New(doc.Name, entities)
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}
