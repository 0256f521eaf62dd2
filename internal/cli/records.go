package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/runlog"
)

// recordsCommand creates the "records" command for inspecting run logs.
func (c *CLI) recordsCommand() *cobra.Command {
	var (
		logPath  string
		failures bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Show the run log of a generated dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := runlog.ReadCSV(logPath)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("Run log is empty")
				return nil
			}

			accepted, exhausted, renderFailed := 0, 0, 0
			for _, rec := range records {
				switch rec.State {
				case runlog.StateAccepted:
					accepted++
				case runlog.StateExhausted:
					exhausted++
				case runlog.StateRenderFailed:
					renderFailed++
				}
				if failures && rec.State == runlog.StateAccepted {
					continue
				}
				printRecord(rec)
			}

			printNewline()
			printRunStats(accepted, exhausted, renderFailed)
			if total := len(records); exhausted > 0 {
				printDetail("rejection rate: %.1f%%", 100*float64(exhausted)/float64(total))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&logPath, "log", "l", filepath.Join(config.DefaultOutputDir, config.DefaultLogName), "path to the run log")
	cmd.Flags().BoolVar(&failures, "failures", false, "only show exhausted and render-failed records")

	return cmd
}

func printRecord(rec runlog.ImageRecord) {
	state := StyleSuccess.Render(string(rec.State))
	switch rec.State {
	case runlog.StateExhausted:
		state = StyleWarning.Render(string(rec.State))
	case runlog.StateRenderFailed:
		state = StyleError.Render(string(rec.State))
	}

	line := fmt.Sprintf("%6d  %-14s %s  %s", rec.Index, rec.Name, state,
		StyleDim.Render(fmt.Sprintf("attempts=%d min_distance=%.3f", rec.Attempts, rec.MinDistance)))
	if rec.ViolatingPair != "" {
		line += " " + StyleWarning.Render(rec.ViolatingPair)
	}
	fmt.Println(line)
}
