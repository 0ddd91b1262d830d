package anim

import "fmt"

// MakeDelta converts an absolute clip into a delta clip relative to the
// base pose of skel. Every key is converted independently:
//
//	position = key.position - base.position
//	rotation = key.rotation * inverse(base.rotation)
//
// so that additively layering the result onto the base pose reproduces the
// source clip. The source clip is not modified.
func MakeDelta(clip *Clip, skel Skeleton) (*Clip, error) {
	if clip.Delta {
		return nil, fmt.Errorf("clip %q: %w", clip.Name, ErrAlreadyDelta)
	}
	if err := clip.Validate(skel.JointCount()); err != nil {
		return nil, err
	}

	out := &Clip{
		Name:     clip.Name,
		Duration: clip.Duration,
		Delta:    true,
		Tracks:   make([]Track, len(clip.Tracks)),
	}
	for ti := range clip.Tracks {
		src := &clip.Tracks[ti]
		basePos, baseRot := skel.BasePose(src.Joint)
		invRot := baseRot.Inverse()

		dst := Track{
			Joint:     src.Joint,
			Positions: make([]Vec3Key, len(src.Positions)),
			Rotations: make([]QuatKey, len(src.Rotations)),
		}
		for i, k := range src.Positions {
			dst.Positions[i] = Vec3Key{Time: k.Time, Value: k.Value.Sub(basePos)}
		}
		for i, k := range src.Rotations {
			dst.Rotations[i] = QuatKey{Time: k.Time, Value: k.Value.Mul(invRot).Normalize()}
		}
		out.Tracks[ti] = dst
	}
	return out, nil
}
