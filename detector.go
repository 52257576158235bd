// Package overlap finds the intersecting triangles between the shapes of a
// scene tree, reporting each hit to user callbacks.
package overlap

import (
	"fmt"
	"math"
	"time"

	"github.com/akmonengine/overlap/geometry"
	"github.com/akmonengine/overlap/log"
	"github.com/akmonengine/overlap/scene"
	"github.com/akmonengine/overlap/spatial"
	"github.com/samber/lo"
)

const (
	// DEFAULT_EPSILON keeps the exact triangle test
	DEFAULT_EPSILON = 0.0
	DEFAULT_WORKERS = 1
)

const noCallbacksWarning = "intersection testing invoked, but no callbacks set up"

// Config holds the settings of a Detector
type Config struct {
	// Epsilon is the distance under which two triangles count as intersecting
	Epsilon float64
	// ShapeInternals enables the test of every shape against itself
	ShapeInternals bool
	// IndexKind selects the spatial index used for shapes and triangles
	IndexKind spatial.Kind
	// MaxItemsPerNode bounds the leaves of tree indexes
	MaxItemsPerNode int
	// Workers extracts the triangles of all shapes in parallel when above 1
	Workers int
	// Logger receives the warnings of a run, such as dropped degenerate
	// triangles or a run without callbacks
	Logger log.Logger
}

// DefaultConfig returns the settings used by NewDetector when nothing else
// is asked for.
func DefaultConfig() Config {
	return Config{
		Epsilon:         DEFAULT_EPSILON,
		IndexKind:       spatial.KindOctree,
		MaxItemsPerNode: spatial.DEFAULT_MAX_ITEMS,
		Workers:         DEFAULT_WORKERS,
		Logger:          log.New("overlap"),
	}
}

// Stats describes the last run of a Detector
type Stats struct {
	Shapes         int
	ShapePairs     int
	SelfTests      int
	TriangleChecks int
	Hits           int
	// Aborted is set when a callback or a visitation callback stopped the run
	Aborted  bool
	Duration time.Duration
}

type registeredCallback struct {
	id CallbackID
	fn IntersectionFunc
}

type visitation struct {
	kind scene.Kind
	fn   VisitFunc
}

// Detector finds the intersecting triangles between the shapes of a scene.
// A Detector is not safe for concurrent use, and a run discards the state of
// the previous one.
type Detector struct {
	config Config
	diag   *log.Diagnostics

	filter    FilterFunc
	callbacks []registeredCallback
	nextID    CallbackID
	disabled  map[scene.Kind]bool
	visitors  []visitation

	shapes []*shapeRecord
	stats  Stats
}

// NewDetector creates a Detector. It panics on a negative epsilon.
func NewDetector(config Config) *Detector {
	config.Workers = max(DEFAULT_WORKERS, config.Workers)
	if config.MaxItemsPerNode <= 0 {
		config.MaxItemsPerNode = spatial.DEFAULT_MAX_ITEMS
	}

	d := &Detector{
		config:   config,
		diag:     log.NewDiagnostics(config.Logger),
		disabled: make(map[scene.Kind]bool),
	}
	d.SetEpsilon(config.Epsilon)

	return d
}

// SetEpsilon sets the distance under which triangles are reported. Zero
// selects the exact test.
func (d *Detector) SetEpsilon(epsilon float64) {
	if epsilon < 0 || math.IsNaN(epsilon) {
		panic(fmt.Sprintf("overlap: invalid epsilon %v", epsilon))
	}
	d.config.Epsilon = epsilon
}

// Epsilon returns the distance below which triangles count as intersecting
func (d *Detector) Epsilon() float64 {
	return d.config.Epsilon
}

// SetFilterCallback installs the shape pair filter, nil removes it
func (d *Detector) SetFilterCallback(filter FilterFunc) {
	d.filter = filter
}

// AddIntersectionCallback appends fn to the callbacks invoked on every hit.
// Callbacks run in registration order.
func (d *Detector) AddIntersectionCallback(fn IntersectionFunc) CallbackID {
	d.nextID++
	d.callbacks = append(d.callbacks, registeredCallback{id: d.nextID, fn: fn})
	return d.nextID
}

// RemoveIntersectionCallback unregisters the callback returned under id.
// Unknown ids are ignored.
func (d *Detector) RemoveIntersectionCallback(id CallbackID) {
	d.callbacks = lo.Reject(d.callbacks, func(cb registeredCallback, _ int) bool {
		return cb.id == id
	})
}

// SetShapeInternalsEnabled toggles testing the triangles of each shape
// against the other triangles of the same shape
func (d *Detector) SetShapeInternalsEnabled(enabled bool) {
	d.config.ShapeInternals = enabled
}

func (d *Detector) ShapeInternalsEnabled() bool {
	return d.config.ShapeInternals
}

// SetKindEnabled prunes the nodes of the given kind, and their subtrees,
// from the next runs when enabled is false.
func (d *Detector) SetKindEnabled(kind scene.Kind, enabled bool) {
	d.disabled[kind] = !enabled
}

// KindEnabled reports whether nodes of kind are traversed. Manipulators
// embed draggers and are disabled along with them.
func (d *Detector) KindEnabled(kind scene.Kind) bool {
	if kind == scene.KindManipulator && d.disabled[scene.KindDragger] {
		return false
	}
	return !d.disabled[kind]
}

func (d *Detector) SetDraggersEnabled(enabled bool) {
	d.SetKindEnabled(scene.KindDragger, enabled)
}

func (d *Detector) SetManipulatorsEnabled(enabled bool) {
	d.SetKindEnabled(scene.KindManipulator, enabled)
}

// AddVisitationCallback calls fn on every traversed node of the given kind.
// The first callback answering something else than scene.Continue decides
// for the node.
func (d *Detector) AddVisitationCallback(kind scene.Kind, fn VisitFunc) {
	d.visitors = append(d.visitors, visitation{kind: kind, fn: fn})
}

// Stats returns the counters of the last run
func (d *Detector) Stats() Stats {
	return d.stats
}

// Apply runs the detection over the tree under root
func (d *Detector) Apply(root *scene.Node) {
	d.run(func(v scene.Visitor) bool {
		return scene.Traverse(root, v)
	})
}

// ApplyPath runs the detection over the subtree at the end of path
func (d *Detector) ApplyPath(path scene.Path) {
	d.run(func(v scene.Visitor) bool {
		return scene.TraversePath(path, v)
	})
}

// ApplyPaths runs a single detection over the subtrees of all paths
func (d *Detector) ApplyPaths(paths []scene.Path) {
	d.run(func(v scene.Visitor) bool {
		for _, path := range paths {
			if !scene.TraversePath(path, v) {
				return false
			}
		}
		return true
	})
}

func (d *Detector) reset() {
	d.shapes = nil
	d.stats = Stats{}
}

func (d *Detector) run(traverse func(scene.Visitor) bool) {
	d.reset()
	if len(d.callbacks) == 0 {
		d.diag.Warning(noCallbacksWarning)
		return
	}

	start := time.Now()
	defer func() {
		d.stats.Duration = time.Since(start)
		d.diag.Debugf("%d shapes, %d shape pairs, %d self tests, %d triangle checks, %d hits in %s",
			d.stats.Shapes, d.stats.ShapePairs, d.stats.SelfTests, d.stats.TriangleChecks, d.stats.Hits, d.stats.Duration)
	}()

	if !traverse(&gatherer{d: d}) {
		d.stats.Aborted = true
		d.shapes = nil
		return
	}
	d.stats.Shapes = len(d.shapes)

	if d.config.Workers > 1 {
		task(d.config.Workers, d.shapes, func(shape *shapeRecord) {
			if !shape.box.IsEmpty() {
				shape.primitives(d)
			}
		})
	}

	d.stats.Aborted = !d.testShapes()
}

// testShapes runs the broad phase over the gathered shapes, and returns
// false when a callback aborted.
func (d *Detector) testShapes() bool {
	overall := geometry.EmptyAABB()
	for _, shape := range d.shapes {
		if !shape.box.IsEmpty() {
			overall = overall.Extend(shape.box.Project())
		}
	}
	if overall.IsEmpty() {
		return true
	}

	tree, err := spatial.New(d.config.IndexKind, overall.Scale(BOX_SLACK), shapeBox, d.config.MaxItemsPerNode)
	if err != nil {
		panic(fmt.Sprintf("overlap: cannot index shapes: %v", err))
	}
	for _, shape := range d.shapes {
		if shape.box.IsEmpty() {
			continue
		}
		if err := tree.Insert(shape); err != nil {
			d.diag.Warningf("shape %s left out of the broad phase: %v", shape.path, err)
		}
	}

	epsilon := d.config.Epsilon
	for _, shape1 := range d.shapes {
		if shape1.box.IsEmpty() {
			continue
		}
		tree.Remove(shape1)

		if d.config.ShapeInternals {
			d.stats.SelfTests++
			if !d.testInternal(shape1.primitives(d)) {
				return false
			}
		}

		query := shape1.box.Project()
		check := shape1.box
		if epsilon > 0 {
			query = query.Expand(epsilon)
			check = check.Expand(epsilon)
		}

		for _, item := range tree.Query(query) {
			shape2 := item.(*shapeRecord)
			if !check.Intersects(shape2.box) {
				continue
			}
			if d.filter != nil && !d.filter(shape1.path, shape2.path) {
				continue
			}

			d.stats.ShapePairs++
			if !d.testPrimitives(shape1.primitives(d), shape2.primitives(d)) {
				return false
			}
		}
	}

	return true
}

// gatherer collects the shapes of a traversal
type gatherer struct {
	d *Detector
}

func (g *gatherer) Visit(path scene.Path) scene.Response {
	kind := path.Tail().Kind
	if !g.d.KindEnabled(kind) {
		return scene.Prune
	}

	for _, v := range g.d.visitors {
		if v.kind != kind {
			continue
		}
		if response := v.fn(path); response != scene.Continue {
			return response
		}
	}

	return scene.Continue
}

func (g *gatherer) Shape(path scene.Path, box geometry.XfBox) {
	g.d.shapes = append(g.d.shapes, &shapeRecord{path: path, box: box})
}
