package main

import (
	"fmt"
	"os"

	"github.com/akmonengine/overlap"
	"github.com/akmonengine/overlap/log"
	"github.com/akmonengine/overlap/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a ground slab, a tilted cube resting into it and a
// tessellated sphere touching the cube
func SetupScene() (*scene.Node, error) {
	ground := scene.NewShape("ground", scene.BoxMesh(mgl64.Vec3{10, 0.5, 10})).
		SetTransform(mgl64.Translate3D(0, -0.5, 0))

	cube := scene.NewShape("cube", scene.BoxMesh(mgl64.Vec3{1.5, 1.5, 1.5})).
		SetTransform(mgl64.Translate3D(-5, 1.2, -5).Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(30))))

	sphereSource, err := scene.SolidSphere(1, scene.DEFAULT_MESH_CELLS)
	if err != nil {
		return nil, err
	}
	sphere := scene.NewShape("sphere", sphereSource).SetTransform(mgl64.Translate3D(-5, 3.5, -5))

	// The handle overlaps the cube but is a dragger, skipped below
	handle := scene.NewNode("handle", scene.KindDragger).AddChild(
		scene.NewShape("grip", scene.BoxMesh(mgl64.Vec3{0.2, 0.2, 2})).SetTransform(mgl64.Translate3D(-5, 1.2, -5)),
	)

	return scene.NewNode("root", scene.KindGroup).AddChild(ground, cube, sphere, handle), nil
}

func main() {
	log.SetLevel(log.Debug)

	root, err := SetupScene()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	config := overlap.DefaultConfig()
	config.Epsilon = 0.01
	d := overlap.NewDetector(config)
	d.SetDraggersEnabled(false)

	collector := overlap.NewCollector(overlap.NEXT_PRIMITIVE)
	collector.Attach(d)
	d.Apply(root)

	for _, pair := range collector.Pairs() {
		fmt.Printf("%s x %s: %d triangle pairs\n", pair.A, pair.B, pair.Hits)
	}

	stats := d.Stats()
	fmt.Printf("%d shapes, %d shape pairs, %d triangle checks, %d hits in %s\n",
		stats.Shapes, stats.ShapePairs, stats.TriangleChecks, stats.Hits, stats.Duration)
}
