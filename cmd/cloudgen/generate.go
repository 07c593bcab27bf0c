package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Frontier/internal/cloudcache"
	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

var (
	cloudSize   int
	cloudSeed   uint64
	cloudShape  string
	printFormat string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cloud around the input frontier",
	Long: `Reads a frontier as a JSON array of points and writes the synthetic
cloud. The same input, seed and shape always produce the same cloud.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	addCloudFlags(generateCmd)
	generateCmd.Flags().StringVarP(&printFormat, "format", "f", "json", "output format (json, csv)")
}

func addCloudFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&cloudSize, "size", "n", 0, "number of cloud points, 0 for the shape's default size")
	cmd.Flags().Uint64Var(&cloudSeed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&cloudShape, "shape", frontier.DefaultShapeName, "cloud shape preset")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if printFormat != "json" && printFormat != "csv" {
		return fmt.Errorf("unknown format %q", printFormat)
	}
	points, cloud, err := synthesize(cmd)
	if err != nil {
		return err
	}
	if printFormat == "csv" {
		return writeCSV(cmd.OutOrStdout(), points, cloud)
	}
	return writeJSON(cmd.OutOrStdout(), cloud)
}

// synthesize reads --in and builds the cloud from the shared generation flags.
func synthesize(cmd *cobra.Command) ([]frontier.Point, frontier.Cloud, error) {
	ind, err := frontier.ParseIndustry(industry)
	if err != nil {
		return nil, frontier.Cloud{}, err
	}
	shape, err := frontier.ShapeByName(cloudShape)
	if err != nil {
		return nil, frontier.Cloud{}, err
	}
	size := cloudSize
	if size <= 0 {
		size = shape.DefaultSize
	}

	points, err := readFrontier(cmd)
	if err != nil {
		return nil, frontier.Cloud{}, err
	}

	key := cloudcache.NewKey(points, ind.Directions(), size, cloudSeed, shape.Name)
	cloud, err := cloudcache.Synth{Logger: logger}.Generate(key, points)
	if err != nil {
		return nil, frontier.Cloud{}, err
	}
	if cloud.MalformedAnchors > 0 {
		logger.Warn("dropped malformed frontier points", "count", cloud.MalformedAnchors)
	}
	logger.Debug("cloud generated", "points", len(cloud.Points), "skipped", cloud.Skipped, "shape", shape.Name)
	return points, cloud, nil
}

// writeCSV emits frontier rows followed by cloud rows. The f3 column is
// present only when the cloud is three-dimensional.
func writeCSV(w io.Writer, front []frontier.Point, cloud frontier.Cloud) error {
	cw := csv.NewWriter(w)
	header := []string{"kind", "id", "rank", "f1", "f2"}
	if cloud.HasF3 {
		header = append(header, "f3")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := func(kind string, p frontier.Point) []string {
		rec := []string{kind, p.ID, strconv.Itoa(p.Rank), formatFloat(p.F1), formatFloat(p.F2)}
		if cloud.HasF3 {
			f3 := ""
			if p.F3 != nil {
				f3 = formatFloat(*p.F3)
			}
			rec = append(rec, f3)
		}
		return rec
	}
	for _, p := range front {
		if err := cw.Write(row("frontier", p)); err != nil {
			return err
		}
	}
	for _, p := range cloud.Points {
		if err := cw.Write(row("cloud", p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
