package pipeline

import (
	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/constraint"
	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/sampler"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// candidateSource adapts the sampler to the negotiator's source interface.
type candidateSource struct {
	sampler *sampler.Sampler
	rig     *sampler.Rig
	cfg     *config.Config
}

func (s *candidateSource) Sample() sampler.Candidate {
	return s.sampler.SampleCandidate(s.rig, s.cfg)
}

// sceneJudge applies a candidate to the shared scene and evaluates the
// resulting volumes. The scene is intentionally left holding the last judged
// candidate; on acceptance it is already posed for rendering.
type sceneJudge struct {
	scene     *scene.Scene
	evaluator *constraint.Evaluator
}

func (j *sceneJudge) Judge(cand sampler.Candidate) (constraint.Evaluation, error) {
	sampler.Apply(j.scene, cand)
	return j.evaluator.Evaluate(j.scene.Volumes())
}

// NewEvaluator builds the constraint evaluator for a config/scene pair.
// Exposed so callers can dry-check a configuration without running the loop.
func NewEvaluator(cfg *config.Config, sc *scene.Scene) (*constraint.Evaluator, error) {
	return buildEvaluator(cfg, sc)
}

// buildEvaluator translates the validated safety configuration into an
// evaluator, checking every referenced role against the loaded scene so a
// config/scene mismatch fails at startup instead of mid-run.
func buildEvaluator(cfg *config.Config, sc *scene.Scene) (*constraint.Evaluator, error) {
	roleOf := func(section, name string) (scene.Role, error) {
		role := scene.Role(name)
		if _, ok := sc.ByRole(role); !ok {
			return "", errors.New(errors.ErrCodeRoleNotFound, "%s references role %q not present in scene", section, name)
		}
		return role, nil
	}

	constraints := make([]constraint.SafetyConstraint, 0, len(cfg.Safety.Constraints))
	for _, c := range cfg.Safety.Constraints {
		a, err := roleOf("safety.constraints", c.A)
		if err != nil {
			return nil, err
		}
		b, err := roleOf("safety.constraints", c.B)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, constraint.SafetyConstraint{
			Name: c.Name, A: a, B: b, MinDistance: c.MinDistance,
		})
	}

	overlaps := make([]constraint.OverlapRule, 0, len(cfg.Safety.Overlaps))
	for _, o := range cfg.Safety.Overlaps {
		a, err := roleOf("safety.overlaps", o.A)
		if err != nil {
			return nil, err
		}
		b, err := roleOf("safety.overlaps", o.B)
		if err != nil {
			return nil, err
		}
		overlaps = append(overlaps, constraint.OverlapRule{Name: o.Name, A: a, B: b})
	}

	return constraint.NewEvaluator(constraints, overlaps)
}
