package cliplib

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// fileDoc mirrors the on-disk YAML layout.
type fileDoc struct {
	Skeleton skeletonDoc `yaml:"skeleton"`
	Clips    []clipDoc   `yaml:"clips"`
	Layers   []layerDoc  `yaml:"layers"`
}

type skeletonDoc struct {
	Joints []jointDoc `yaml:"joints"`
}

type jointDoc struct {
	Name     string    `yaml:"name"`
	Parent   string    `yaml:"parent"`
	Position []float32 `yaml:"position"`
	Rotation []float32 `yaml:"rotation"`
}

type clipDoc struct {
	Name     string     `yaml:"name"`
	Duration float32    `yaml:"duration"`
	Delta    bool       `yaml:"delta"`
	DeltaOf  string     `yaml:"delta_of"`
	Tracks   []trackDoc `yaml:"tracks"`
}

type trackDoc struct {
	Joint     string   `yaml:"joint"`
	Positions []keyDoc `yaml:"positions"`
	Rotations []keyDoc `yaml:"rotations"`
}

// keyDoc is a single key. Rotations accept either a quaternion value
// (x, y, z, w) or an axis with an angle in degrees.
type keyDoc struct {
	Time    float32   `yaml:"time"`
	Value   []float32 `yaml:"value"`
	Axis    []float32 `yaml:"axis"`
	Degrees float32   `yaml:"degrees"`
}

type layerDoc struct {
	Clip  string   `yaml:"clip"`
	Mode  string   `yaml:"mode"`
	Param *float32 `yaml:"param"`
}

func parseVec3(v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return math.Vec3{}, fmt.Errorf("%w: want 3 components, got %d", ErrBadVector, len(v))
	}
}

func parseQuat(v []float32) (math.Quat, error) {
	switch len(v) {
	case 0:
		return math.QuatIdentity(), nil
	case 4:
		q := math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
		if q.Length() < math.Epsilon {
			return math.Quat{}, fmt.Errorf("%w: zero-length quaternion", ErrBadVector)
		}
		return q.Normalize(), nil
	default:
		return math.Quat{}, fmt.Errorf("%w: want 4 components, got %d", ErrBadVector, len(v))
	}
}

func (k keyDoc) position() (math.Vec3, error) {
	if len(k.Value) == 0 {
		return math.Vec3{}, fmt.Errorf("%w: position key needs a value", ErrBadVector)
	}
	return parseVec3(k.Value, math.Vec3Zero())
}

func (k keyDoc) rotation() (math.Quat, error) {
	if len(k.Axis) == 0 {
		if len(k.Value) == 0 {
			return math.Quat{}, fmt.Errorf("%w: rotation key needs a value or an axis", ErrBadVector)
		}
		return parseQuat(k.Value)
	}
	if len(k.Value) != 0 {
		return math.Quat{}, fmt.Errorf("%w: rotation key has both value and axis", ErrBadVector)
	}
	axis, err := parseVec3(k.Axis, math.Vec3Zero())
	if err != nil {
		return math.Quat{}, err
	}
	if axis.Length() < math.Epsilon {
		return math.Quat{}, fmt.Errorf("%w: zero-length axis", ErrBadVector)
	}
	return math.QuatFromAxisAngle(axis.Normalize(), k.Degrees*math32.Pi/180), nil
}
