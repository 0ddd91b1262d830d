package anim

import (
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// testSkeleton is a minimal Skeleton for exercising players and trees.
type testSkeleton struct {
	base Pose
	cur  Pose
}

func newTestSkeleton(base ...JointPose) *testSkeleton {
	s := &testSkeleton{base: base, cur: make(Pose, len(base))}
	copy(s.cur, base)
	return s
}

func (s *testSkeleton) JointCount() int { return len(s.base) }

func (s *testSkeleton) BasePose(i int) (math.Vec3, math.Quat) {
	return s.base[i].Position, s.base[i].Rotation
}

func (s *testSkeleton) SetPose(i int, pos math.Vec3, rot math.Quat) {
	s.cur[i] = JointPose{Position: pos, Rotation: rot}
}

func identityJoint(pos math.Vec3) JointPose {
	return JointPose{Position: pos, Rotation: math.QuatIdentity()}
}

func vec(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func yaw(angle float32) math.Quat {
	return math.QuatFromAxisAngle(math.Vec3{Y: 1}, angle)
}

// scenarioClip is a two second loop moving joint 0 to (2,0,0) and back.
func scenarioClip() *Clip {
	return &Clip{
		Name:     "scenario",
		Duration: 2,
		Tracks: []Track{{
			Joint: 0,
			Positions: []Vec3Key{
				{Time: 0, Value: vec(0, 0, 0)},
				{Time: 1, Value: vec(2, 0, 0)},
				{Time: 2, Value: vec(0, 0, 0)},
			},
		}},
	}
}

func mustPlayer(t *testing.T, clip *Clip, skel Skeleton, opts ...PlayerOption) *Player {
	t.Helper()
	p, err := NewPlayer(clip, skel, opts...)
	if err != nil {
		t.Fatalf("NewPlayer(%q): %v", clip.Name, err)
	}
	return p
}

func assertPose(t *testing.T, got, want Pose) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("pose length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Position.ApproxEqual(want[i].Position, 1e-4) {
			t.Errorf("joint %d position: got %v, want %v", i, got[i].Position, want[i].Position)
		}
		if !got[i].Rotation.ApproxEqual(want[i].Rotation, 1e-4) {
			t.Errorf("joint %d rotation: got %v, want %v", i, got[i].Rotation, want[i].Rotation)
		}
	}
}
