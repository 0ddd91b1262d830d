package anim

import (
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// BlendMode selects how a blend node combines its inputs.
type BlendMode int

const (
	// BlendPass outputs the left-hand input unchanged.
	BlendPass BlendMode = iota
	// BlendAdditive layers a delta right-hand input on top of the
	// left-hand input, scaled by the node parameter.
	BlendAdditive
	// BlendCrossfade interpolates from the left-hand input to the
	// right-hand input by the node parameter in [0, 1].
	BlendCrossfade
)

// String returns the config name of the mode.
func (m BlendMode) String() string {
	switch m {
	case BlendPass:
		return "pass"
	case BlendAdditive:
		return "additive"
	case BlendCrossfade:
		return "crossfade"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(m))
	}
}

// ParseBlendMode converts a config name to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "":
		return BlendPass, nil
	case "additive", "add":
		return BlendAdditive, nil
	case "crossfade", "crossfade_linear", "lerp":
		return BlendCrossfade, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownBlendMode)
	}
}

func (m BlendMode) valid() bool {
	return m >= BlendPass && m <= BlendCrossfade
}

// needsRHS reports whether the mode reads the right-hand input.
func (m BlendMode) needsRHS() bool {
	return m != BlendPass
}

// combine writes the per-joint blend of lhs and rhs into dst.
// All three poses have the same length; rhs may be nil for BlendPass.
func combine(dst, lhs, rhs Pose, mode BlendMode, param float32) {
	switch mode {
	case BlendPass:
		copy(dst, lhs)

	case BlendAdditive:
		// Position weight is unbounded; rotation weight saturates at 1.
		rw := clamp01(param)
		for i := range dst {
			rot := rhs[i].Rotation
			if rw < 1 {
				rot = math.QuatIdentity().Slerp(rot, rw)
			}
			dst[i] = JointPose{
				Position: lhs[i].Position.Add(rhs[i].Position.Scale(param)),
				Rotation: rot.Mul(lhs[i].Rotation),
			}
		}

	case BlendCrossfade:
		a := clamp01(param)
		for i := range dst {
			dst[i] = JointPose{
				Position: lhs[i].Position.Lerp(rhs[i].Position, a),
				Rotation: lhs[i].Rotation.Slerp(rhs[i].Rotation, a),
			}
		}
	}
}
