// Package constraint classifies candidate scene configurations as safe or
// violating.
//
// The evaluator is a pure function of entity volumes: identical inputs always
// produce identical verdicts and distances. It holds no state and performs no
// I/O, which keeps it directly testable without a scene or renderer.
package constraint

import (
	"math"

	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/geometry"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// Verdict is the aggregate safety classification of one candidate.
type Verdict int

// Verdict values.
const (
	Safe Verdict = iota
	Violation
)

// String returns the log spelling of the verdict.
func (v Verdict) String() string {
	if v == Safe {
		return "SAFE"
	}
	return "VIOLATION"
}

// SafetyConstraint binds two entity roles to a minimum allowable distance in
// meters. A candidate violates the constraint when the computed distance is
// strictly less than the threshold.
type SafetyConstraint struct {
	Name        string
	A, B        scene.Role
	MinDistance float64
}

// OverlapRule names an entity pair whose volumes must never intersect,
// regardless of any configured distance threshold.
type OverlapRule struct {
	Name string
	A, B scene.Role
}

// Measurement is the evaluated distance for a single constraint.
type Measurement struct {
	Name     string
	A, B     scene.Role
	Distance float64 // clamped at zero; penetration reports as 0
	Violated bool
}

// Evaluation is the outcome of evaluating one candidate pose set.
type Evaluation struct {
	Verdict Verdict

	// MinDistance is the smallest distance across all evaluated safety
	// constraints, whether or not it violated its threshold.
	MinDistance float64

	// ViolatingPair names the reported violation: the first overlapping pair
	// if any volumes intersect, otherwise the distance constraint with the
	// smallest measured distance among those violated. Empty when safe.
	ViolatingPair string

	// Measurements holds the per-constraint distances for diagnostics, in
	// constraint order.
	Measurements []Measurement
}

// Evaluator checks a fixed set of safety constraints and overlap rules.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	constraints []SafetyConstraint
	overlaps    []OverlapRule
}

// NewEvaluator validates the rule set once at setup. Non-positive thresholds
// and unnamed roles are configuration errors, not runtime ones.
func NewEvaluator(constraints []SafetyConstraint, overlaps []OverlapRule) (*Evaluator, error) {
	for i, c := range constraints {
		if c.A == "" || c.B == "" {
			return nil, errors.New(errors.ErrCodeConfigValue, "constraint %d (%s): both roles are required", i, c.Name)
		}
		if c.MinDistance <= 0 {
			return nil, errors.New(errors.ErrCodeConfigValue,
				"constraint %d (%s): distance threshold must be positive, got %g", i, c.Name, c.MinDistance)
		}
	}
	for i, o := range overlaps {
		if o.A == "" || o.B == "" {
			return nil, errors.New(errors.ErrCodeConfigValue, "overlap rule %d (%s): both roles are required", i, o.Name)
		}
	}
	return &Evaluator{constraints: constraints, overlaps: overlaps}, nil
}

// Evaluate classifies one candidate given the world-frame volume of every
// entity, keyed by role. Roles referenced by a rule but absent from the
// volume set fail the evaluation as a role-not-found error; this indicates a
// scene/config mismatch that validation should have caught.
func (ev *Evaluator) Evaluate(volumes map[scene.Role]geometry.Volume) (Evaluation, error) {
	result := Evaluation{MinDistance: math.Inf(1)}

	// Overlap rules first: an intersection is a violation no matter what the
	// distance thresholds say. The first overlapping pair is the reported
	// one; it outranks any distance violation.
	overlapPair := ""
	for _, rule := range ev.overlaps {
		a, b, err := lookup(volumes, rule.A, rule.B)
		if err != nil {
			return Evaluation{}, err
		}
		if geometry.Overlaps(a, b) && overlapPair == "" {
			overlapPair = rule.Name
		}
	}

	// Distance constraints: track the worst (smallest-distance) violation.
	worstPair := ""
	worst := math.Inf(1)
	for _, c := range ev.constraints {
		a, b, err := lookup(volumes, c.A, c.B)
		if err != nil {
			return Evaluation{}, err
		}
		dist := math.Max(0, geometry.Distance(a, b))
		violated := dist < c.MinDistance

		result.Measurements = append(result.Measurements, Measurement{
			Name:     c.Name,
			A:        c.A,
			B:        c.B,
			Distance: dist,
			Violated: violated,
		})
		if dist < result.MinDistance {
			result.MinDistance = dist
		}
		if violated && dist < worst {
			worstPair = c.Name
			worst = dist
		}
	}

	switch {
	case overlapPair != "":
		result.Verdict = Violation
		result.ViolatingPair = overlapPair
	case worstPair != "":
		result.Verdict = Violation
		result.ViolatingPair = worstPair
	}

	if len(ev.constraints) == 0 {
		result.MinDistance = 0
	}
	return result, nil
}

func lookup(volumes map[scene.Role]geometry.Volume, a, b scene.Role) (geometry.Volume, geometry.Volume, error) {
	va, ok := volumes[a]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeRoleNotFound, "no volume for role %q", a)
	}
	vb, ok := volumes[b]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeRoleNotFound, "no volume for role %q", b)
	}
	return va, vb, nil
}
