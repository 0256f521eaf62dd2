package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/constraint"
	"github.com/matzehuels/cobotgen/pkg/pipeline"
	"github.com/matzehuels/cobotgen/pkg/sampler"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// validateCommand creates the "validate" command: a dry check of config and
// scene without rendering anything.
func (c *CLI) validateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration and scene without generating images",
		Long: `Validate loads the configuration and scene, checks every range and safety
constraint against the scene's entities, and evaluates the cell's default
pose so misconfigurations surface before a long run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			printSuccess("Configuration is valid")
			printKeyValue("images", fmt.Sprintf("%d", cfg.Images.Count))
			printKeyValue("seed", fmt.Sprintf("%d", cfg.Images.Seed))
			printKeyValue("max attempts", fmt.Sprintf("%d", cfg.Images.MaxAttempts))

			sc, err := scene.LoadFile(cfg.Scene.Source)
			if err != nil {
				return err
			}
			printSuccess("Scene %q loaded with %d entities", sc.Name, len(sc.Entities()))

			if _, err := sampler.NewRig(sc); err != nil {
				return err
			}
			evaluator, err := pipeline.NewEvaluator(cfg, sc)
			if err != nil {
				return err
			}
			printSuccess("All constraint roles resolve against the scene")

			// Evaluate the default pose as a sanity reference.
			eval, err := evaluator.Evaluate(sc.Volumes())
			if err != nil {
				return err
			}
			printNewline()
			printKeyValue("default pose", eval.Verdict.String())
			printKeyValue("min distance", fmt.Sprintf("%.3f m", eval.MinDistance))
			if eval.Verdict == constraint.Violation {
				printWarning("The unrandomized cell already violates %s; every attempt will start from a violating layout", eval.ViolatingPair)
			}
			for _, m := range eval.Measurements {
				status := StyleSuccess.Render("ok")
				if m.Violated {
					status = StyleError.Render("violated")
				}
				printDetail("%s (%s ↔ %s): %.3f m %s", m.Name, m.A, m.B, m.Distance, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "path to the run configuration")

	return cmd
}
