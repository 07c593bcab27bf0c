package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

var (
	plotOut string
	plotX   string
	plotY   string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the frontier and its cloud as a PNG scatter plot",
	Long: `Generates a cloud exactly like "generate" and draws two objectives of the
frontier and the cloud against each other. Points without the chosen
objective are left out.`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func init() {
	addCloudFlags(plotCmd)
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "cloud.png", "PNG file to write, - for stdout")
	plotCmd.Flags().StringVar(&plotX, "x", "f1", "objective on the x axis (f1, f2, f3)")
	plotCmd.Flags().StringVar(&plotY, "y", "f2", "objective on the y axis (f1, f2, f3)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	xOf, err := objective(plotX)
	if err != nil {
		return err
	}
	yOf, err := objective(plotY)
	if err != nil {
		return err
	}
	points, cloud, err := synthesize(cmd)
	if err != nil {
		return err
	}

	ch := chart.Chart{
		Width:      1024,
		Height:     768,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: plotX},
		YAxis:      chart.YAxis{Name: plotY},
		Series: []chart.Series{
			scatter("cloud", cloud.Points, xOf, yOf, pointStyle(chart.ColorAlternateGray, 2)),
			scatter("frontier", points, xOf, yOf, pointStyle(chart.ColorRed, 5)),
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var w io.Writer = cmd.OutOrStdout()
	if plotOut != "-" {
		f, err := os.Create(plotOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	logger.Debug("plot written", "out", plotOut, "frontier", len(points), "cloud", len(cloud.Points))
	return nil
}

func objective(name string) (func(frontier.Point) (float64, bool), error) {
	switch name {
	case "f1":
		return func(p frontier.Point) (float64, bool) { return p.F1, true }, nil
	case "f2":
		return func(p frontier.Point) (float64, bool) { return p.F2, true }, nil
	case "f3":
		return func(p frontier.Point) (float64, bool) {
			if p.F3 == nil {
				return 0, false
			}
			return *p.F3, true
		}, nil
	}
	return nil, fmt.Errorf("unknown objective %q", name)
}

// scatter builds a points-only series. A single point is repeated so the
// series still has a drawable range.
func scatter(name string, points []frontier.Point, xOf, yOf func(frontier.Point) (float64, bool), style chart.Style) chart.ContinuousSeries {
	s := chart.ContinuousSeries{Name: name, Style: style}
	for _, p := range points {
		x, okX := xOf(p)
		y, okY := yOf(p)
		if !okX || !okY {
			continue
		}
		s.XValues = append(s.XValues, x)
		s.YValues = append(s.YValues, y)
	}
	if len(s.XValues) == 1 {
		s.XValues = append(s.XValues, s.XValues[0])
		s.YValues = append(s.YValues, s.YValues[0])
	}
	return s
}

func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}
