package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cobotgen/internal/api"
	"github.com/matzehuels/cobotgen/pkg/config"
)

// serveCommand creates the "serve" command exposing a dataset over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		outputDir string
		logPath   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated dataset over HTTP for inspection",
		Example: `  cobotgen serve
  cobotgen serve --output datasets/line4 --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := api.New(api.Options{
				OutputDir: outputDir,
				LogPath:   logPath,
				Logger:    c.Logger,
			})
			printInfo("Serving %s on %s", outputDir, addr)
			printNextStep("Records", "curl http://localhost"+addr+"/api/records")
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&outputDir, "output", "o", config.DefaultOutputDir, "dataset directory")
	cmd.Flags().StringVarP(&logPath, "log", "l", "", "run log path (default <output>/"+config.DefaultLogName+")")

	return cmd
}
