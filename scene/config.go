package scene

import (
	"encoding/json"
	"math"
	"os"

	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Vec3Cfg is a vector written as a JSON array of three numbers
type Vec3Cfg [3]float64

func (v Vec3Cfg) vec() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// CylinderCfg describes a cylinder along Z
type CylinderCfg struct {
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// Config describes one node of a scene file and its subtree.
//
// At most one geometry field may be set. Rotation is in degrees, applied
// around X, then Y, then Z. The local transform is translate * rotate *
// scale.
type Config struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"`
	Translate Vec3Cfg   `json:"translate,omitempty"`
	RotDeg    Vec3Cfg   `json:"rotDeg,omitempty"`
	Scale     *Vec3Cfg  `json:"scale,omitempty"`
	Children  []*Config `json:"children,omitempty"`

	// Box is the full size of an exact 12 triangle box
	Box *Vec3Cfg `json:"box,omitempty"`
	// SolidBox, Sphere and Cylinder are tessellated with marching cubes
	SolidBox  *Vec3Cfg     `json:"solidBox,omitempty"`
	Sphere    float64      `json:"sphere,omitempty"`
	Cylinder  *CylinderCfg `json:"cylinder,omitempty"`
	Cells     int          `json:"cells,omitempty"`
	Triangles [][9]float64 `json:"triangles,omitempty"`
}

// LoadConfig reads a scene file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "scene: reading config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes a scene from JSON
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &cfg, nil
}

// Transform returns the local transform of the node
func (c *Config) Transform() mgl64.Mat4 {
	const k = math.Pi / 180

	scale := mgl64.Vec3{1, 1, 1}
	if c.Scale != nil {
		scale = c.Scale.vec()
	}

	rotation := mgl64.HomogRotate3DZ(c.RotDeg[2] * k).
		Mul4(mgl64.HomogRotate3DY(c.RotDeg[1] * k)).
		Mul4(mgl64.HomogRotate3DX(c.RotDeg[0] * k))

	return mgl64.Translate3D(c.Translate[0], c.Translate[1], c.Translate[2]).
		Mul4(rotation).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Build validates the config and constructs the node tree
func (c *Config) Build() (*Node, error) {
	source, err := c.source()
	if err != nil {
		return nil, errors.Wrapf(err, "node %q", c.Name)
	}

	kind := KindGroup
	if source != nil {
		kind = KindShape
	}
	if c.Kind != "" {
		if kind, err = ParseKind(c.Kind); err != nil {
			return nil, errors.Wrapf(err, "node %q: %q", c.Name, c.Kind)
		}
	}

	node := NewNode(c.Name, kind).SetTransform(c.Transform())
	if source != nil {
		node.SetGeometry(source)
	}

	for _, childCfg := range c.Children {
		child, err := childCfg.Build()
		if err != nil {
			return nil, errors.Wrapf(err, "in %q", c.Name)
		}
		node.AddChild(child)
	}

	return node, nil
}

func (c *Config) source() (TriangleSource, error) {
	set := lo.Count([]bool{
		c.Box != nil,
		c.SolidBox != nil,
		c.Sphere != 0,
		c.Cylinder != nil,
		len(c.Triangles) > 0,
	}, true)
	if set > 1 {
		return nil, errors.New("more than one geometry given")
	}

	switch {
	case c.Box != nil:
		return BoxMesh(c.Box.vec().Mul(0.5)), nil
	case c.SolidBox != nil:
		return SolidBox(c.SolidBox.vec(), c.Cells)
	case c.Sphere != 0:
		return SolidSphere(c.Sphere, c.Cells)
	case c.Cylinder != nil:
		return SolidCylinder(c.Cylinder.Height, c.Cylinder.Radius, c.Cells)
	case len(c.Triangles) > 0:
		triangles := lo.Map(c.Triangles, func(t [9]float64, _ int) geometry.Triangle {
			return geometry.Triangle{
				A: mgl64.Vec3{t[0], t[1], t[2]},
				B: mgl64.Vec3{t[3], t[4], t[5]},
				C: mgl64.Vec3{t[6], t[7], t[8]},
			}
		})
		return TriangleMesh(triangles...), nil
	}

	return nil, nil
}
