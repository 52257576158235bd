package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/akmonengine/overlap"
	"github.com/akmonengine/overlap/scene"
	"github.com/akmonengine/overlap/spatial"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Check a scene file for intersecting shapes.
func CheckScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if ctx.NArg() != 1 {
		return cli.NewExitError("missing scene file argument", 1)
	}

	config, err := detectorConfig(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	root, err := loadScene(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	d := overlap.NewDetector(config)
	d.SetDraggersEnabled(!ctx.Bool("no-draggers"))
	d.SetManipulatorsEnabled(!ctx.Bool("no-manips"))

	collector := overlap.NewCollector(overlap.NEXT_PRIMITIVE)
	if ctx.Bool("first") {
		collector.Limit = 1
	}
	collector.Attach(d)

	d.Apply(root)

	stats := d.Stats()
	logger.Noticef("%d shapes, %d shape pairs tested, %d triangle checks in %s",
		stats.Shapes, stats.ShapePairs, stats.TriangleChecks, stats.Duration)
	writeReport(ctx.App.Writer, collector)

	if ctx.Bool("strict") && collector.Len() > 0 {
		return cli.NewExitError(fmt.Sprintf("%d intersections found", collector.Len()), 2)
	}
	return nil
}

func detectorConfig(ctx *cli.Context) (overlap.Config, error) {
	config := overlap.DefaultConfig()
	config.Logger = logger
	config.ShapeInternals = ctx.Bool("internals")
	config.Workers = ctx.Int("workers")

	config.Epsilon = ctx.Float64("epsilon")
	if config.Epsilon < 0 {
		return config, errors.Errorf("invalid epsilon %v", config.Epsilon)
	}

	kind, err := spatial.ParseKind(ctx.String("index"))
	if err != nil {
		return config, errors.Wrapf(err, "index %q", ctx.String("index"))
	}
	config.IndexKind = kind

	return config, nil
}

func loadScene(path string) (*scene.Node, error) {
	sceneCfg, err := scene.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	root, err := sceneCfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building scene")
	}
	return root, nil
}

func writeReport(w io.Writer, collector *overlap.Collector) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Shape", "Shape", "Triangle pairs"})
	for _, pair := range collector.Pairs() {
		table.Append([]string{
			pair.A.String(),
			pair.B.String(),
			fmt.Sprintf("%d", pair.Hits),
		})
	}
	table.SetFooter([]string{"", "TOTAL", fmt.Sprintf("%d", collector.Len())})

	table.Render()
	fmt.Fprint(w, buf.String())
}
