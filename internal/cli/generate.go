package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/pipeline"
)

// generateCommand creates the "generate" command, the main dataset loop.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		configPath string
		count      int
		seed       uint64
		outputDir  string
		runID      string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an annotated image dataset",
		Long: `Generate renders randomized, safety-verified cell configurations into an
annotated image dataset. Each image is rejection-sampled against the
configured safety constraints; images whose sampling budget runs out are
recorded as exhausted and the run continues.`,
		Example: `  cobotgen generate --config config.toml
  cobotgen generate --config config.toml --count 500 --seed 7
  cobotgen generate --config config.toml --output datasets/line4 --no-cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if count > 0 {
				cfg.Images.Count = count
			}
			if seed != 0 {
				cfg.Images.Seed = seed
			}
			if outputDir != "" {
				cfg.Images.OutputDir = outputDir
			}

			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return err
			}
			defer func() { _ = runner.Close() }()

			prog := newProgress(c.Logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				Config: cfg,
				RunID:  runID,
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d images", len(result.Records)))

			printNewline()
			printSuccess("Generated %d of %d images", result.Stats.Accepted, cfg.Images.Count)
			printRunStats(result.Stats.Accepted, result.Stats.Exhausted, result.Stats.RenderFailed)
			if result.Stats.Exhausted > 0 {
				printWarning("Some images exhausted their sampling budget; consider widening ranges or raising max_attempts")
			}
			printFile(result.LogPath)
			printNewline()
			printNextStep("Inspect the run", "cobotgen records --log "+result.LogPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "path to the run configuration")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "override the number of images to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the random seed")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "override the output directory")
	cmd.Flags().StringVar(&runID, "run-id", "", "tag records with a fixed run id instead of a generated one")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the rendered frame cache")

	return cmd
}
