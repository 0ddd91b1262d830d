// Package anim samples keyframed joint animation clips and blends the
// results into a skeleton pose.
//
// A Clip is immutable keyframe data shared by any number of Players. A
// Player owns the playback state of one clip (timer, per-track frame
// cursors) and produces a per-joint Pose each Update. A BlendTree combines
// player outputs through Pass, Additive and Crossfade nodes and writes the
// final pose into a Skeleton with Apply.
package anim

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Vec3Key is a position keyframe.
type Vec3Key struct {
	Time  float32
	Value math.Vec3
}

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time  float32
	Value math.Quat
}

func (k Vec3Key) keyTime() float32 { return k.Time }
func (k QuatKey) keyTime() float32 { return k.Time }

// Track holds the keyframes of one joint. Position and rotation channels
// are independent and may have different counts and timings.
//
// Keys are expected in ascending time order and the last key of a looping
// channel is expected to repeat the first one at the clip duration.
type Track struct {
	Joint     int
	Positions []Vec3Key
	Rotations []QuatKey
}

// Clip is a named set of joint tracks with a loop period in seconds.
// Joints without a track keep their initial pose. When Delta is set,
// sampled values are offsets from the base pose rather than absolute poses.
type Clip struct {
	Name     string
	Duration float32
	Delta    bool
	Tracks   []Track
}

// Validate checks the clip against a skeleton of jointCount joints.
func (c *Clip) Validate(jointCount int) error {
	if math32.IsNaN(c.Duration) || math32.IsInf(c.Duration, 0) || c.Duration < 0 {
		return fmt.Errorf("clip %q duration %v: %w", c.Name, c.Duration, ErrInvalidDuration)
	}

	seen := make(map[int]int, len(c.Tracks))
	for ti := range c.Tracks {
		tr := &c.Tracks[ti]
		if tr.Joint < 0 || tr.Joint >= jointCount {
			return fmt.Errorf("clip %q track %d joint %d (skeleton has %d): %w",
				c.Name, ti, tr.Joint, jointCount, ErrJointOutOfRange)
		}
		if prev, ok := seen[tr.Joint]; ok {
			return fmt.Errorf("clip %q tracks %d and %d joint %d: %w", c.Name, prev, ti, tr.Joint, ErrDuplicateTrack)
		}
		seen[tr.Joint] = ti

		if i := firstUnordered(tr.Positions); i >= 0 {
			return fmt.Errorf("clip %q track %d position key %d: %w", c.Name, ti, i, ErrNonMonotonicKeys)
		}
		if i := firstUnordered(tr.Rotations); i >= 0 {
			return fmt.Errorf("clip %q track %d rotation key %d: %w", c.Name, ti, i, ErrNonMonotonicKeys)
		}
	}
	return nil
}

// KeyCount returns the total number of position and rotation keys.
func (c *Clip) KeyCount() (positions, rotations int) {
	for i := range c.Tracks {
		positions += len(c.Tracks[i].Positions)
		rotations += len(c.Tracks[i].Rotations)
	}
	return positions, rotations
}

// firstUnordered returns the index of the first key whose time is invalid
// or lower than its predecessor, or -1.
func firstUnordered[K timed](keys []K) int {
	prev := float32(0)
	for i, k := range keys {
		t := k.keyTime()
		if math32.IsNaN(t) || math32.IsInf(t, 0) || t < prev {
			return i
		}
		prev = t
	}
	return -1
}
