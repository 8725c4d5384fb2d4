package main

import (
	"time"

	"github.com/soypat/implicit/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the /meshing HTTP endpoint",
	Long: `Serves POST /meshing. The request body is JSON with the fields
visualizationFunction (formula), limits (half size of the meshed cube) and
algorithm (marching_cubes or dual_contour). The response is {"mesh": "<OBJ text>"}.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		srv, err := server.New(logger, cfg, serveTimeout)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 30*time.Second, "per request extraction deadline (0 for none)")
}
