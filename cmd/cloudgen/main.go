// Command cloudgen synthesizes dominated point clouds around a frontier read
// from a JSON file, without running the service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

var (
	inputPath string
	industry  string
	verbose   bool
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "cloudgen",
	Short:         "Generate synthetic dominated clouds around a Pareto frontier",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputPath, "in", "i", "-", "frontier JSON file, - for stdin")
	rootCmd.PersistentFlags().StringVar(&industry, "industry", "light", "industry preset for objective directions (light, heavy)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(generateCmd, plotCmd, frontierCmd, shapesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// readFrontier loads a JSON array of points from --in.
func readFrontier(cmd *cobra.Command) ([]frontier.Point, error) {
	var r io.Reader = cmd.InOrStdin()
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var points []frontier.Point
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, fmt.Errorf("decode frontier: %w", err)
	}
	return points, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
