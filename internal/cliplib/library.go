// Package cliplib loads skeletons, animation clips and blend layers from
// YAML documents and watches them for changes.
package cliplib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/skeleton"
)

var (
	ErrUnknownJoint  = errors.New("unknown joint")
	ErrUnknownClip   = errors.New("unknown clip")
	ErrDuplicateClip = errors.New("duplicate clip name")
	ErrBadVector     = errors.New("malformed vector")
	ErrNoSkeleton    = errors.New("library has no skeleton joints")
)

// Layer is one entry of the library's blend stack, applied in order with
// BlendTree.Insert. The first layer becomes the root leaf, so its mode and
// param are unused.
type Layer struct {
	Clip  string
	Mode  anim.BlendMode
	Param float32
}

// Library is a parsed clip document.
type Library struct {
	Path     string
	Skeleton *skeleton.Skeleton
	Layers   []Layer

	clips map[string]*anim.Clip
	order []string
	log   *zap.Logger
}

// Option configures parsing.
type Option func(*Library)

// WithLogger sets the logger used while parsing and building trees.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		if l != nil {
			lib.log = l
		}
	}
}

// Load reads and parses the document at path.
func Load(path string, opts ...Option) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lib, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lib.Path = path
	return lib, nil
}

// Parse builds a Library from YAML. Every clip is validated against the
// skeleton, so a successfully parsed library only holds playable clips.
func Parse(data []byte, opts ...Option) (*Library, error) {
	lib := &Library{
		clips: make(map[string]*anim.Clip),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(lib)
	}

	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	skel, err := buildSkeleton(doc.Skeleton)
	if err != nil {
		return nil, err
	}
	lib.Skeleton = skel

	for i, cd := range doc.Clips {
		if err := lib.addClip(cd); err != nil {
			return nil, fmt.Errorf("clip %d (%q): %w", i, cd.Name, err)
		}
	}

	for i, ld := range doc.Layers {
		layer, err := lib.parseLayer(ld)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		lib.Layers = append(lib.Layers, layer)
	}

	lib.log.Debug("library parsed",
		zap.Int("joints", skel.JointCount()),
		zap.Int("clips", len(lib.order)),
		zap.Int("layers", len(lib.Layers)))
	return lib, nil
}

// Clip returns the named clip.
func (l *Library) Clip(name string) (*anim.Clip, bool) {
	c, ok := l.clips[name]
	return c, ok
}

// ClipNames returns clip names in document order.
func (l *Library) ClipNames() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// BuildTree returns a blend tree over the library skeleton with every
// layer inserted in order. An empty layer list yields an empty tree.
func (l *Library) BuildTree(opts ...anim.TreeOption) (*anim.BlendTree, error) {
	opts = append([]anim.TreeOption{anim.WithTreeLogger(l.log)}, opts...)
	tree := anim.NewBlendTree(l.Skeleton, opts...)
	for i, layer := range l.Layers {
		if _, err := tree.Insert(l.clips[layer.Clip], layer.Mode, layer.Param); err != nil {
			return nil, fmt.Errorf("layer %d (%s %s): %w", i, layer.Mode, layer.Clip, err)
		}
	}
	return tree, nil
}

func buildSkeleton(doc skeletonDoc) (*skeleton.Skeleton, error) {
	if len(doc.Joints) == 0 {
		return nil, ErrNoSkeleton
	}

	index := make(map[string]int, len(doc.Joints))
	joints := make([]skeleton.Joint, 0, len(doc.Joints))
	for i, jd := range doc.Joints {
		parent := -1
		if jd.Parent != "" {
			p, ok := index[jd.Parent]
			if !ok {
				// Parents must be declared before their children.
				return nil, fmt.Errorf("joint %d (%q): parent %q: %w", i, jd.Name, jd.Parent, ErrUnknownJoint)
			}
			parent = p
		}
		pos, err := parseVec3(jd.Position, math.Vec3Zero())
		if err != nil {
			return nil, fmt.Errorf("joint %d (%q) position: %w", i, jd.Name, err)
		}
		rot, err := parseQuat(jd.Rotation)
		if err != nil {
			return nil, fmt.Errorf("joint %d (%q) rotation: %w", i, jd.Name, err)
		}
		if jd.Name != "" {
			index[jd.Name] = i
		}
		joints = append(joints, skeleton.Joint{
			Name:         jd.Name,
			Parent:       parent,
			BasePosition: pos,
			BaseRotation: rot,
		})
	}
	return skeleton.New(joints)
}

func (l *Library) addClip(cd clipDoc) error {
	if cd.Name == "" {
		return errors.New("clip needs a name")
	}
	if _, dup := l.clips[cd.Name]; dup {
		return ErrDuplicateClip
	}

	var clip *anim.Clip
	if cd.DeltaOf != "" {
		if len(cd.Tracks) != 0 {
			return errors.New("delta_of clip cannot declare tracks")
		}
		src, ok := l.clips[cd.DeltaOf]
		if !ok {
			return fmt.Errorf("delta_of %q: %w", cd.DeltaOf, ErrUnknownClip)
		}
		d, err := anim.MakeDelta(src, l.Skeleton)
		if err != nil {
			return err
		}
		d.Name = cd.Name
		clip = d
	} else {
		c, err := l.parseClip(cd)
		if err != nil {
			return err
		}
		clip = c
	}

	if err := clip.Validate(l.Skeleton.JointCount()); err != nil {
		return err
	}
	l.clips[cd.Name] = clip
	l.order = append(l.order, cd.Name)
	return nil
}

func (l *Library) parseClip(cd clipDoc) (*anim.Clip, error) {
	clip := &anim.Clip{
		Name:     cd.Name,
		Duration: cd.Duration,
		Delta:    cd.Delta,
		Tracks:   make([]anim.Track, 0, len(cd.Tracks)),
	}
	for ti, td := range cd.Tracks {
		joint := l.Skeleton.FindJoint(td.Joint)
		if joint < 0 {
			return nil, fmt.Errorf("track %d: joint %q: %w", ti, td.Joint, ErrUnknownJoint)
		}
		track := anim.Track{Joint: joint}
		for ki, kd := range td.Positions {
			v, err := kd.position()
			if err != nil {
				return nil, fmt.Errorf("track %d position key %d: %w", ti, ki, err)
			}
			track.Positions = append(track.Positions, anim.Vec3Key{Time: kd.Time, Value: v})
		}
		for ki, kd := range td.Rotations {
			q, err := kd.rotation()
			if err != nil {
				return nil, fmt.Errorf("track %d rotation key %d: %w", ti, ki, err)
			}
			track.Rotations = append(track.Rotations, anim.QuatKey{Time: kd.Time, Value: q})
		}
		clip.Tracks = append(clip.Tracks, track)
	}
	return clip, nil
}

func (l *Library) parseLayer(ld layerDoc) (Layer, error) {
	if _, ok := l.clips[ld.Clip]; !ok {
		return Layer{}, fmt.Errorf("clip %q: %w", ld.Clip, ErrUnknownClip)
	}
	mode, err := anim.ParseBlendMode(ld.Mode)
	if err != nil {
		return Layer{}, err
	}
	layer := Layer{Clip: ld.Clip, Mode: mode, Param: 1}
	if ld.Param != nil {
		layer.Param = *ld.Param
	}
	return layer, nil
}
