package overlap

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/overlap/geometry"
	"github.com/akmonengine/overlap/log"
	"github.com/akmonengine/overlap/scene"
	"github.com/akmonengine/overlap/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

var allKinds = []spatial.Kind{spatial.KindOctree, spatial.KindHashGrid, spatial.KindRTree}

// newTestDetector creates a silent detector with small index leaves
func newTestDetector(kind spatial.Kind) *Detector {
	config := DefaultConfig()
	config.IndexKind = kind
	config.MaxItemsPerNode = 4
	config.Logger = log.Discard
	return NewDetector(config)
}

// boxNode creates a unit-ish box shape placed at the given position
func boxNode(name string, x, y, z float64) *scene.Node {
	return scene.NewShape(name, scene.BoxMesh(mgl64.Vec3{1, 1, 1})).SetTransform(mgl64.Translate3D(x, y, z))
}

// randomScene builds a flat scene of rotated, scaled boxes crowded around
// the origin.
func randomScene(rng *rand.Rand, count int) *scene.Node {
	root := scene.NewNode("root", scene.KindGroup)
	for i := 0; i < count; i++ {
		axis := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5 + 1e-3}.Normalize()
		transform := mgl64.Translate3D(rng.Float64()*4-2, rng.Float64()*4-2, rng.Float64()*4-2).
			Mul4(mgl64.HomogRotate3D(rng.Float64()*math.Pi, axis)).
			Mul4(mgl64.Scale3D(0.5+rng.Float64(), 0.5+rng.Float64(), 0.5+rng.Float64()))
		root.AddChild(scene.NewShape(fmt.Sprintf("box%d", i), scene.BoxMesh(mgl64.Vec3{1, 1, 1})).SetTransform(transform))
	}
	return root
}

// worldTriangles returns the triangles of a direct child of the root
func worldTriangles(node *scene.Node) []geometry.Triangle {
	var triangles []geometry.Triangle
	node.Geometry().Triangles(func(a, b, c mgl64.Vec3) {
		triangles = append(triangles, geometry.Triangle{A: a, B: b, C: c}.Transform(node.Transform))
	})
	return triangles
}

// bruteForceHits counts the intersecting triangle pairs between distinct
// shapes of a flat scene.
func bruteForceHits(root *scene.Node, epsilon float64) int {
	shapes := root.Children()
	hits := 0
	for i := range shapes {
		for j := i + 1; j < len(shapes); j++ {
			for _, t1 := range worldTriangles(shapes[i]) {
				for _, t2 := range worldTriangles(shapes[j]) {
					if t1.IntersectEpsilon(t2, epsilon) {
						hits++
					}
				}
			}
		}
	}
	return hits
}

// =============================================================================
// Completeness Tests
// =============================================================================

func TestDetector_MatchesBruteForce(t *testing.T) {
	for _, kind := range allKinds {
		for _, epsilon := range []float64{0, 0.1} {
			t.Run(fmt.Sprintf("%s/eps=%v", kind, epsilon), func(t *testing.T) {
				root := randomScene(rand.New(rand.NewSource(7)), 10)
				expected := bruteForceHits(root, epsilon)
				require.Greater(t, expected, 0)

				d := newTestDetector(kind)
				d.SetEpsilon(epsilon)
				collector := NewCollector(NEXT_PRIMITIVE)
				collector.Attach(d)
				d.Apply(root)

				require.Equal(t, expected, collector.Len())
				require.Equal(t, expected, d.Stats().Hits)
				require.Equal(t, 10, d.Stats().Shapes)
				require.False(t, d.Stats().Aborted)
				for _, hit := range collector.Hits() {
					require.NotEqual(t, hit.A.Path.Tail(), hit.B.Path.Tail())
				}
			})
		}
	}
}

func TestDetector_IsIdempotent(t *testing.T) {
	root := randomScene(rand.New(rand.NewSource(3)), 8)
	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	d.Apply(root)
	first := collector.Len()
	firstStats := d.Stats()

	collector.Reset()
	d.Apply(root)

	require.Equal(t, first, collector.Len())
	require.Equal(t, firstStats.ShapePairs, d.Stats().ShapePairs)
	require.Equal(t, firstStats.TriangleChecks, d.Stats().TriangleChecks)
}

func TestDetector_WorkersGiveSameResults(t *testing.T) {
	root := randomScene(rand.New(rand.NewSource(11)), 12)

	sequential := newTestDetector(spatial.KindOctree)
	expected := NewCollector(NEXT_PRIMITIVE)
	expected.Attach(sequential)
	sequential.Apply(root)

	config := DefaultConfig()
	config.Workers = 4
	config.Logger = log.Discard
	parallel := NewDetector(config)
	got := NewCollector(NEXT_PRIMITIVE)
	got.Attach(parallel)
	parallel.Apply(root)

	require.Equal(t, expected.Len(), got.Len())
	require.Equal(t, len(expected.Pairs()), len(got.Pairs()))
	for _, pair := range expected.Pairs() {
		require.Equal(t, pair.Hits, got.PairHits(pair.A.Tail(), pair.B.Tail()))
	}
}

func TestDetector_EmptyScene(t *testing.T) {
	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	d.Apply(scene.NewNode("root", scene.KindGroup))
	require.Zero(t, collector.Len())
	require.Zero(t, d.Stats().Shapes)

	d.Apply(nil)
	require.Zero(t, collector.Len())
}

func TestDetector_TouchingBoxes(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 2, 0, 0),
	)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)
	d.Apply(root)

	require.Greater(t, collector.Len(), 0)
	require.Len(t, collector.Pairs(), 1)
}

func TestDetector_TouchingBoxesUnderRotatedParent(t *testing.T) {
	axis := mgl64.Vec3{1, 2, 3}.Normalize()
	for deg := 1; deg < 90; deg++ {
		root := scene.NewNode("root", scene.KindGroup).
			SetTransform(mgl64.HomogRotate3D(float64(deg)*math.Pi/180, axis)).
			AddChild(
				boxNode("a", 0, 0, 0),
				boxNode("b", 2, 0, 0),
			)

		d := newTestDetector(spatial.KindOctree)
		collector := NewCollector(NEXT_PRIMITIVE)
		collector.Attach(d)
		d.Apply(root)

		require.Greater(t, collector.Len(), 0, "rotation of %d degrees", deg)
		require.Len(t, collector.Pairs(), 1, "rotation of %d degrees", deg)
	}
}

// =============================================================================
// Callback Tests
// =============================================================================

func TestDetector_NoCallbacksWarns(t *testing.T) {
	rec := &log.Recorder{}
	config := DefaultConfig()
	config.Logger = rec
	d := NewDetector(config)

	d.Apply(randomScene(rand.New(rand.NewSource(1)), 4))

	require.Equal(t, 1, rec.Count(log.Warning))
	require.Equal(t, noCallbacksWarning, rec.Entries()[0].Message)
	require.Zero(t, d.Stats().Shapes)
}

func TestDetector_CallbacksRunInOrder(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 0.5, 0, 0),
	)

	var calls []int
	d := newTestDetector(spatial.KindOctree)
	d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		calls = append(calls, 1)
		return NEXT_PRIMITIVE
	})
	d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		calls = append(calls, 2)
		return NEXT_PRIMITIVE
	})
	d.Apply(root)

	require.NotEmpty(t, calls)
	require.Len(t, calls, 2*d.Stats().Hits)
	for i := 0; i < len(calls); i += 2 {
		require.Equal(t, []int{1, 2}, calls[i:i+2])
	}
}

func TestDetector_NextShapeLeavesPair(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 0.5, 0, 0),
		boxNode("c", 20, 0, 0),
		boxNode("d", 20.5, 0, 0),
	)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_SHAPE)
	collector.Attach(d)
	skipped := 0
	d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		skipped++
		return NEXT_PRIMITIVE
	})
	d.Apply(root)

	require.Equal(t, 2, collector.Len())
	require.Zero(t, skipped)
	for _, pair := range collector.Pairs() {
		require.Equal(t, 1, pair.Hits)
	}
	require.False(t, d.Stats().Aborted)
}

func TestDetector_AbortStopsRun(t *testing.T) {
	root := randomScene(rand.New(rand.NewSource(5)), 8)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(ABORT)
	collector.Attach(d)
	after := 0
	d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		after++
		return NEXT_PRIMITIVE
	})
	d.Apply(root)

	require.Equal(t, 1, collector.Len())
	require.Zero(t, after)
	require.True(t, d.Stats().Aborted)
	require.Equal(t, 1, d.Stats().Hits)
}

func TestDetector_InvalidResponsePanics(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 0.5, 0, 0),
	)

	d := newTestDetector(spatial.KindOctree)
	d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		return Response(9)
	})

	require.Panics(t, func() { d.Apply(root) })
}

func TestDetector_RemoveIntersectionCallback(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 0.5, 0, 0),
	)

	d := newTestDetector(spatial.KindOctree)
	removed := 0
	id := d.AddIntersectionCallback(func(a, b *IntersectingPrimitive) Response {
		removed++
		return NEXT_PRIMITIVE
	})
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)
	d.RemoveIntersectionCallback(id)
	d.Apply(root)

	require.Zero(t, removed)
	require.Greater(t, collector.Len(), 0)
}

func TestDetector_FilterVetoesPairs(t *testing.T) {
	a, b, c := boxNode("a", 0, 0, 0), boxNode("b", 0.5, 0, 0), boxNode("c", -0.5, 0, 0)
	root := scene.NewNode("root", scene.KindGroup).AddChild(a, b, c)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)
	d.SetFilterCallback(func(p1, p2 scene.Path) bool {
		return p1.Tail() != b && p2.Tail() != b
	})
	d.Apply(root)

	require.Zero(t, collector.PairHits(a, b))
	require.Zero(t, collector.PairHits(b, c))
	require.Greater(t, collector.PairHits(a, c), 0)
	require.Equal(t, 1, d.Stats().ShapePairs)
}

func TestDetector_LocalVertices(t *testing.T) {
	a := scene.NewShape("a", scene.BoxMesh(mgl64.Vec3{1, 1, 1})).
		SetTransform(mgl64.Translate3D(3, 1, 0).Mul4(mgl64.HomogRotate3DZ(0.3)).Mul4(mgl64.Scale3D(2, 1, 1)))
	b := boxNode("b", 4, 1, 0)
	root := scene.NewNode("root", scene.KindGroup).AddChild(a, b)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)
	d.Apply(root)

	require.Greater(t, collector.Len(), 0)
	for _, hit := range collector.Hits() {
		for _, p := range []IntersectingPrimitive{hit.A, hit.B} {
			require.Equal(t, PrimitiveTriangle, p.Type)
			for k := 0; k < 3; k++ {
				world := mgl64.TransformCoordinate(p.Vertex[k], p.Path.Tail().Transform)
				require.True(t, world.ApproxEqualThreshold(p.WorldVertex[k], 1e-9))
				require.True(t, p.Path.Tail().Bounds().Expand(1e-9).ContainsPoint(p.Vertex[k]))
			}
		}
	}
}

// =============================================================================
// Epsilon Tests
// =============================================================================

func TestDetector_Epsilon(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup).AddChild(
		boxNode("a", 0, 0, 0),
		boxNode("b", 2.05, 0, 0),
	)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	d.Apply(root)
	require.Zero(t, collector.Len())
	require.Zero(t, d.Stats().ShapePairs)

	d.SetEpsilon(0.1)
	require.Equal(t, 0.1, d.Epsilon())
	d.Apply(root)
	require.Greater(t, collector.Len(), 0)
	require.Equal(t, 1, d.Stats().ShapePairs)
}

func TestDetector_InvalidEpsilonPanics(t *testing.T) {
	d := newTestDetector(spatial.KindOctree)
	require.Panics(t, func() { d.SetEpsilon(-0.1) })
	require.Panics(t, func() { d.SetEpsilon(math.NaN()) })

	config := DefaultConfig()
	config.Epsilon = -1
	require.Panics(t, func() { NewDetector(config) })
}

// =============================================================================
// Shape Internals Tests
// =============================================================================

func crossingShape(name string) *scene.Node {
	return scene.NewShape(name, scene.TriangleMesh(
		geometry.Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{2, 0, 0}, C: mgl64.Vec3{0, 2, 0}},
		geometry.Triangle{A: mgl64.Vec3{0.5, 0.5, -1}, B: mgl64.Vec3{0.5, 0.5, 1}, C: mgl64.Vec3{0.5, -1, 0}},
	))
}

func TestDetector_ShapeInternals(t *testing.T) {
	shape := crossingShape("x")
	root := scene.NewNode("root", scene.KindGroup).AddChild(shape)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	require.False(t, d.ShapeInternalsEnabled())
	d.Apply(root)
	require.Zero(t, collector.Len())
	require.Zero(t, d.Stats().SelfTests)

	d.SetShapeInternalsEnabled(true)
	require.True(t, d.ShapeInternalsEnabled())
	d.Apply(root)
	require.Equal(t, 1, collector.Len())
	require.Equal(t, 1, d.Stats().SelfTests)
	require.Equal(t, 1, collector.PairHits(shape, shape))

	hit := collector.Hits()[0]
	require.Equal(t, hit.A.Path.String(), hit.B.Path.String())
}

func TestDetector_DegenerateTrianglesWarnOnce(t *testing.T) {
	rec := &log.Recorder{}
	config := DefaultConfig()
	config.Logger = rec
	config.ShapeInternals = true
	d := NewDetector(config)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	shape := scene.NewShape("flat", scene.TriangleMesh(
		geometry.Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{1, 0, 0}, C: mgl64.Vec3{0, 1, 0}},
		geometry.Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{1, 0, 0}, C: mgl64.Vec3{2, 0, 0}},
		geometry.Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{0, 0, 0}, C: mgl64.Vec3{0, 1, 0}},
	))
	root := scene.NewNode("root", scene.KindGroup).AddChild(shape)

	d.Apply(root)
	d.Apply(root)

	require.Equal(t, 1, rec.Count(log.Warning))
	require.Zero(t, collector.Len())
	require.Zero(t, d.Stats().TriangleChecks)
}

// =============================================================================
// Traversal Tests
// =============================================================================

func kindScene() (root, a, b, c *scene.Node) {
	a = boxNode("a", 0, 0, 0)
	b = boxNode("b", 0.5, 0, 0)
	c = boxNode("c", -0.5, 0, 0)
	root = scene.NewNode("root", scene.KindGroup).AddChild(
		a,
		scene.NewNode("handle", scene.KindDragger).AddChild(b),
		scene.NewNode("manip", scene.KindManipulator).AddChild(c),
	)
	return root, a, b, c
}

func TestDetector_KindEnabled(t *testing.T) {
	d := newTestDetector(spatial.KindOctree)
	require.True(t, d.KindEnabled(scene.KindDragger))
	require.True(t, d.KindEnabled(scene.KindManipulator))

	d.SetManipulatorsEnabled(false)
	require.True(t, d.KindEnabled(scene.KindDragger))
	require.False(t, d.KindEnabled(scene.KindManipulator))

	d.SetManipulatorsEnabled(true)
	d.SetDraggersEnabled(false)
	require.False(t, d.KindEnabled(scene.KindDragger))
	require.False(t, d.KindEnabled(scene.KindManipulator))

	d.SetDraggersEnabled(true)
	d.SetKindEnabled(scene.KindAnnotation, false)
	require.True(t, d.KindEnabled(scene.KindManipulator))
	require.False(t, d.KindEnabled(scene.KindAnnotation))
}

func TestDetector_DisabledKindsArePruned(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(d *Detector)
		expectedAB bool
		expectedAC bool
		expectedBC bool
	}{
		{"all enabled", func(d *Detector) {}, true, true, true},
		{"manipulators disabled", func(d *Detector) { d.SetManipulatorsEnabled(false) }, true, false, false},
		{"draggers disabled", func(d *Detector) { d.SetDraggersEnabled(false) }, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, a, b, c := kindScene()
			d := newTestDetector(spatial.KindOctree)
			collector := NewCollector(NEXT_PRIMITIVE)
			collector.Attach(d)
			tt.setup(d)
			d.Apply(root)

			require.Equal(t, tt.expectedAB, collector.PairHits(a, b) > 0)
			require.Equal(t, tt.expectedAC, collector.PairHits(a, c) > 0)
			require.Equal(t, tt.expectedBC, collector.PairHits(b, c) > 0)
		})
	}
}

func TestDetector_VisitationCallbacks(t *testing.T) {
	t.Run("prune", func(t *testing.T) {
		root, a, b, c := kindScene()
		d := newTestDetector(spatial.KindOctree)
		collector := NewCollector(NEXT_PRIMITIVE)
		collector.Attach(d)

		var visited []string
		d.AddVisitationCallback(scene.KindDragger, func(path scene.Path) scene.Response {
			visited = append(visited, path.String())
			return scene.Prune
		})
		d.Apply(root)

		require.Equal(t, []string{"root/handle"}, visited)
		require.Zero(t, collector.PairHits(a, b))
		require.Greater(t, collector.PairHits(a, c), 0)
		require.Equal(t, 2, d.Stats().Shapes)
	})

	t.Run("abort", func(t *testing.T) {
		root, _, _, _ := kindScene()
		d := newTestDetector(spatial.KindOctree)
		collector := NewCollector(NEXT_PRIMITIVE)
		collector.Attach(d)

		d.AddVisitationCallback(scene.KindManipulator, func(path scene.Path) scene.Response {
			return scene.Abort
		})
		d.Apply(root)

		require.Zero(t, collector.Len())
		require.True(t, d.Stats().Aborted)
	})
}

func TestDetector_ApplyPath(t *testing.T) {
	a, b := boxNode("a", 0, 0, 0), boxNode("b", 0.5, 0, 0)
	left := scene.NewNode("left", scene.KindGroup).AddChild(a, b)
	right := scene.NewNode("right", scene.KindGroup).SetTransform(mgl64.Translate3D(20, 0, 0)).
		AddChild(boxNode("c", 0, 0, 0), boxNode("d", 0.5, 0, 0))
	root := scene.NewNode("root", scene.KindGroup).AddChild(left, right)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)

	d.ApplyPath(scene.Path{root, left})
	require.Len(t, collector.Pairs(), 1)
	require.Greater(t, collector.PairHits(a, b), 0)
	require.Equal(t, 2, d.Stats().Shapes)

	collector.Reset()
	d.ApplyPaths([]scene.Path{{root, left}, {root, right}})
	require.Len(t, collector.Pairs(), 2)
	require.Equal(t, 4, d.Stats().Shapes)
}

func TestDetector_ApplyPathsAcrossSubtrees(t *testing.T) {
	e, f := boxNode("e", 0, 0, 0), boxNode("f", 0.5, 0, 0)
	g1 := scene.NewNode("g1", scene.KindGroup).AddChild(e)
	g2 := scene.NewNode("g2", scene.KindGroup).AddChild(f)
	root := scene.NewNode("root", scene.KindGroup).AddChild(g1, g2)

	d := newTestDetector(spatial.KindOctree)
	collector := NewCollector(NEXT_PRIMITIVE)
	collector.Attach(d)
	d.ApplyPaths([]scene.Path{{root, g1}, {root, g2}})

	require.Greater(t, collector.PairHits(e, f), 0)
}
