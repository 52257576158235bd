package cmd

import (
	"github.com/akmonengine/overlap/spatial"
	"github.com/urfave/cli"
)

// NewApp returns the command line application
func NewApp() *cli.App {
	// The default version flag also claims -v
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "overlap"
	app.Usage = "find intersecting triangles between the shapes of a scene"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set the log level by name, overriding -v and -vv",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "check",
			Usage: "report the intersecting shapes of a scene file",
			Description: `
Load a JSON scene description, run the intersection detection over the whole
tree and print a table with the number of intersecting triangle pairs found
between every pair of shapes.`,
			ArgsUsage: "scene.json",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "epsilon, e",
					Value: 0,
					Usage: "report triangles closer than this distance",
				},
				cli.BoolFlag{
					Name:  "internals",
					Usage: "test the triangles of every shape against each other",
				},
				cli.StringFlag{
					Name:  "index",
					Value: spatial.KindOctree.String(),
					Usage: "spatial index: octree, grid or rtree",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 1,
					Usage: "number of goroutines extracting triangles",
				},
				cli.BoolFlag{
					Name:  "no-draggers",
					Usage: "skip dragger and manipulator subtrees",
				},
				cli.BoolFlag{
					Name:  "no-manips",
					Usage: "skip manipulator subtrees",
				},
				cli.BoolFlag{
					Name:  "first",
					Usage: "stop at the first intersection",
				},
				cli.BoolFlag{
					Name:  "strict",
					Usage: "exit with status 2 when intersections are found",
				},
			},
			Action: CheckScene,
		},
	}

	return app
}
