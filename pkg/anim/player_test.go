package anim

import (
	"errors"
	stdmath "math"
	"testing"
	"time"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestPlayerScenarioIncremental(t *testing.T) {
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)))
	p := mustPlayer(t, scenarioClip(), skel)

	p.Update(0.5)
	if got := p.Pose()[0].Position; !got.ApproxEqual(vec(1, 0, 0), 1e-6) {
		t.Errorf("t=0.5: got %v, want (1,0,0)", got)
	}

	p.Update(0.5)
	if got := p.Pose()[0].Position; got != vec(2, 0, 0) {
		t.Errorf("t=1.0: got %v, want (2,0,0)", got)
	}
}

func TestPlayerScenarioWrapInOneCall(t *testing.T) {
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)))
	p := mustPlayer(t, scenarioClip(), skel)

	p.Update(2.5)
	if p.Time() != 0.5 {
		t.Errorf("expected time 0.5 after wrap, got %v", p.Time())
	}
	if got := p.Pose()[0].Position; got != vec(1, 0, 0) {
		t.Errorf("got %v, want (1,0,0)", got)
	}
}

func TestPlayerLargeDeltaWraps(t *testing.T) {
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)))
	p := mustPlayer(t, scenarioClip(), skel)

	p.Update(200.5)
	if stdmath.Abs(float64(p.Time()-0.5)) > 1e-3 {
		t.Errorf("expected time ~0.5, got %v", p.Time())
	}
	if p.Time() < 0 || p.Time() > 2 {
		t.Errorf("time %v escaped [0, duration]", p.Time())
	}
}

func TestPlayerHugeStepWrapsInRange(t *testing.T) {
	tests := []struct {
		duration float32
		dt       float32
	}{
		{0.1, 1e15},
		{0.033, 1e9},
		{0.7, 1e20},
		{2.9, 3e30},
	}

	for _, tt := range tests {
		clip := scenarioClip()
		clip.Duration = tt.duration
		clip.Tracks[0].Positions = clip.Tracks[0].Positions[:1]
		p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))))

		done := make(chan struct{})
		go func() {
			p.Update(tt.dt)
			p.Seek(tt.dt)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Update(%g) on duration %g did not return", tt.dt, tt.duration)
		}

		if p.Time() < 0 || p.Time() > tt.duration {
			t.Errorf("Update(%g) on duration %g: time %v escaped [0, duration]", tt.dt, tt.duration, p.Time())
		}
	}
}

func TestPlayerWrapMatchesFreshPlayer(t *testing.T) {
	clip := &Clip{
		Name:     "wave",
		Duration: 3,
		Tracks: []Track{{
			Joint: 0,
			Positions: []Vec3Key{
				{Time: 0, Value: vec(0, 0, 0)},
				{Time: 0.5, Value: vec(1, 2, 0)},
				{Time: 1.5, Value: vec(-1, 0, 4)},
				{Time: 3, Value: vec(0, 0, 0)},
			},
			Rotations: []QuatKey{
				{Time: 0, Value: yaw(0)},
				{Time: 1, Value: yaw(1)},
				{Time: 2, Value: yaw(2)},
				{Time: 3, Value: yaw(0)},
			},
		}},
	}
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)))

	looped := mustPlayer(t, clip, skel)
	looped.Update(1.75)
	looped.Update(1.2) // 2.95, no wrap yet
	looped.Update(1.0) // wraps

	fresh := mustPlayer(t, clip, skel)
	fresh.Update(looped.Time())

	if looped.Pose()[0] != fresh.Pose()[0] {
		t.Errorf("pose after wrap %v differs from fresh player %v", looped.Pose()[0], fresh.Pose()[0])
	}
	if looped.posCursor[0] != fresh.posCursor[0] || looped.rotCursor[0] != fresh.rotCursor[0] {
		t.Errorf("cursors after wrap (%d,%d) differ from fresh (%d,%d)",
			looped.posCursor[0], looped.rotCursor[0], fresh.posCursor[0], fresh.rotCursor[0])
	}
}

func TestPlayerWrapResetsCursors(t *testing.T) {
	clip := scenarioClip()
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)))
	p := mustPlayer(t, clip, skel)

	p.Update(1.5)
	if p.posCursor[0] != 1 {
		t.Fatalf("expected cursor 1 at t=1.5, got %d", p.posCursor[0])
	}

	// 1.5 + 0.7 wraps to ~0.2, inside the first segment.
	p.Update(0.7)
	if p.posCursor[0] != 0 {
		t.Errorf("expected cursor reset to 0 after wrap, got %d", p.posCursor[0])
	}
}

func TestPlayerSingleKeyIsConstant(t *testing.T) {
	rot := yaw(0.8)
	clip := &Clip{
		Name:     "hold",
		Duration: 1,
		Tracks: []Track{{
			Joint:     0,
			Positions: []Vec3Key{{Time: 0.3, Value: vec(4, 5, 6)}},
			Rotations: []QuatKey{{Time: 0.6, Value: rot}},
		}},
	}
	p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))))

	for i := 0; i < 12; i++ {
		p.Update(0.09)
		got := p.Pose()[0]
		if got.Position != vec(4, 5, 6) || got.Rotation != rot {
			t.Fatalf("step %d (t=%v): got %v, want constant key", i, p.Time(), got)
		}
		if p.posCursor[0] != 0 || p.rotCursor[0] != 0 {
			t.Fatalf("single key cursor moved: %d %d", p.posCursor[0], p.rotCursor[0])
		}
	}
}

func TestPlayerBoundaryExactness(t *testing.T) {
	positions := []Vec3Key{
		{Time: 0, Value: vec(0.1, 0.2, 0.3)},
		{Time: 0.4, Value: vec(7.7, -1.3, 2.9)},
		{Time: 1.1, Value: vec(-3.3, 0.01, 9.5)},
		{Time: 2, Value: vec(0.1, 0.2, 0.3)},
	}
	rotations := []QuatKey{
		{Time: 0, Value: yaw(0)},
		{Time: 0.4, Value: yaw(1.3)},
		{Time: 1.1, Value: math.QuatFromAxisAngle(vec(1, 0, 0), 0.7)},
		{Time: 2, Value: yaw(0)},
	}
	clip := &Clip{
		Name:     "exact",
		Duration: 2,
		Tracks:   []Track{{Joint: 0, Positions: positions, Rotations: rotations}},
	}
	p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))))

	for i := range positions {
		p.Seek(positions[i].Time)
		got := p.Pose()[0]
		if got.Position != positions[i].Value {
			t.Errorf("key %d at t=%v: position %v, want exactly %v", i, positions[i].Time, got.Position, positions[i].Value)
		}
		if got.Rotation != rotations[i].Value {
			t.Errorf("key %d at t=%v: rotation %v, want exactly %v", i, rotations[i].Time, got.Rotation, rotations[i].Value)
		}
	}
}

func TestPlayerCursorCap(t *testing.T) {
	clip := scenarioClip()
	p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))))

	p.Seek(2)
	if got, want := p.posCursor[0], len(clip.Tracks[0].Positions)-2; got != want {
		t.Errorf("cursor at end of clip: got %d, want %d", got, want)
	}
	if got := p.Pose()[0].Position; got != vec(0, 0, 0) {
		t.Errorf("pose at end of clip: got %v, want final key", got)
	}
}

func TestPlayerZeroDurationHoldsTime(t *testing.T) {
	clip := scenarioClip()
	clip.Duration = 0
	p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))))

	p.Update(5)
	if p.Time() != 0 {
		t.Errorf("zero-duration clip advanced to %v", p.Time())
	}
	if got := p.Pose()[0].Position; got != vec(0, 0, 0) {
		t.Errorf("zero-duration pose: got %v, want first key", got)
	}
}

func TestPlayerEmptyChannelKeepsBasePose(t *testing.T) {
	base := JointPose{Position: vec(1, 2, 3), Rotation: yaw(0.5)}
	clip := &Clip{
		Name:     "rot-only",
		Duration: 1,
		Tracks: []Track{{
			Joint: 1,
			Rotations: []QuatKey{
				{Time: 0, Value: yaw(0)},
				{Time: 1, Value: yaw(1)},
			},
		}},
	}
	skel := newTestSkeleton(base, base)
	p := mustPlayer(t, clip, skel)
	p.Update(0.5)

	pose := p.Pose()
	if pose[0] != base {
		t.Errorf("joint without track: got %v, want base %v", pose[0], base)
	}
	if pose[1].Position != base.Position {
		t.Errorf("empty position channel: got %v, want base %v", pose[1].Position, base.Position)
	}
	if !pose[1].Rotation.ApproxEqual(yaw(0.5), 1e-5) {
		t.Errorf("rotation channel: got %v, want %v", pose[1].Rotation, yaw(0.5))
	}
}

func TestPlayerDeltaClipStartsAtIdentity(t *testing.T) {
	base := JointPose{Position: vec(1, 2, 3), Rotation: yaw(0.5)}
	clip := &Clip{Name: "delta", Duration: 1, Delta: true}
	p := mustPlayer(t, clip, newTestSkeleton(base, base))
	p.Update(0.25)

	for i, jp := range p.Pose() {
		if jp.Position != (math.Vec3{}) || jp.Rotation != math.QuatIdentity() {
			t.Errorf("joint %d: delta default should be zero/identity, got %v", i, jp)
		}
	}
}

func TestPlayerEmptySkeleton(t *testing.T) {
	clip := &Clip{Name: "nothing", Duration: 1}
	p := mustPlayer(t, clip, newTestSkeleton())
	p.Update(0.5)
	if len(p.Pose()) != 0 {
		t.Errorf("expected empty pose, got %d joints", len(p.Pose()))
	}
}

func TestPlayerClampLoop(t *testing.T) {
	clip := &Clip{
		Name:     "once",
		Duration: 1,
		Tracks: []Track{{
			Joint: 0,
			Positions: []Vec3Key{
				{Time: 0, Value: vec(0, 0, 0)},
				{Time: 1, Value: vec(0, 5, 0)},
			},
		}},
	}
	p := mustPlayer(t, clip, newTestSkeleton(identityJoint(vec(0, 0, 0))), WithLoopMode(LoopClamp))

	p.Update(0.4)
	if p.Finished() {
		t.Fatal("finished too early")
	}
	p.Update(3)
	if !p.Finished() {
		t.Error("expected Finished after passing the end")
	}
	if p.Time() != 1 {
		t.Errorf("clamped time: got %v, want 1", p.Time())
	}
	if got := p.Pose()[0].Position; got != vec(0, 5, 0) {
		t.Errorf("clamped pose: got %v, want final key", got)
	}
}

func TestPlayerSpeedAndNegativeDelta(t *testing.T) {
	p := mustPlayer(t, scenarioClip(), newTestSkeleton(identityJoint(vec(0, 0, 0))), WithSpeed(2))

	p.Update(0.25)
	if p.Time() != 0.5 {
		t.Errorf("speed 2: expected time 0.5, got %v", p.Time())
	}

	p.Update(-0.25)
	if p.Time() != 0.5 {
		t.Errorf("negative delta should hold time, got %v", p.Time())
	}

	p.SetSpeed(0)
	p.Update(1)
	if p.Time() != 0.5 {
		t.Errorf("speed 0 should hold time, got %v", p.Time())
	}
}

func TestPlayerReset(t *testing.T) {
	base := identityJoint(vec(9, 9, 9))
	p := mustPlayer(t, scenarioClip(), newTestSkeleton(base))

	p.Update(1.5)
	p.Reset()
	if p.Time() != 0 {
		t.Errorf("Reset time: got %v", p.Time())
	}
	if p.Pose()[0] != base {
		t.Errorf("Reset pose: got %v, want base %v", p.Pose()[0], base)
	}
	if p.posCursor[0] != 0 {
		t.Errorf("Reset cursor: got %d", p.posCursor[0])
	}
}

func TestNewPlayerValidation(t *testing.T) {
	skel := newTestSkeleton(identityJoint(vec(0, 0, 0)), identityJoint(vec(0, 1, 0)))

	tests := []struct {
		name string
		clip *Clip
		want error
	}{
		{
			name: "negative duration",
			clip: &Clip{Name: "neg", Duration: -1},
			want: ErrInvalidDuration,
		},
		{
			name: "nan duration",
			clip: &Clip{Name: "nan", Duration: float32(stdmath.NaN())},
			want: ErrInvalidDuration,
		},
		{
			name: "joint out of range",
			clip: &Clip{Name: "oob", Duration: 1, Tracks: []Track{{Joint: 2}}},
			want: ErrJointOutOfRange,
		},
		{
			name: "negative joint",
			clip: &Clip{Name: "neg-joint", Duration: 1, Tracks: []Track{{Joint: -1}}},
			want: ErrJointOutOfRange,
		},
		{
			name: "duplicate track",
			clip: &Clip{Name: "dup", Duration: 1, Tracks: []Track{{Joint: 1}, {Joint: 1}}},
			want: ErrDuplicateTrack,
		},
		{
			name: "position keys out of order",
			clip: &Clip{Name: "order", Duration: 1, Tracks: []Track{{
				Joint:     0,
				Positions: []Vec3Key{{Time: 0.5}, {Time: 0.2}},
			}}},
			want: ErrNonMonotonicKeys,
		},
		{
			name: "negative rotation key time",
			clip: &Clip{Name: "neg-key", Duration: 1, Tracks: []Track{{
				Joint:     0,
				Rotations: []QuatKey{{Time: -0.1, Value: math.QuatIdentity()}},
			}}},
			want: ErrNonMonotonicKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlayer(tt.clip, skel)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSeekZeroSpan(t *testing.T) {
	keys := []Vec3Key{
		{Time: 0, Value: vec(0, 0, 0)},
		{Time: 1, Value: vec(1, 0, 0)},
		{Time: 1, Value: vec(5, 0, 0)},
		{Time: 2, Value: vec(0, 0, 0)},
	}

	got, cur := samplePosition(keys, 0, 1)
	if got != vec(1, 0, 0) || cur != 0 {
		t.Errorf("at step time: got %v cursor %d, want (1,0,0) cursor 0", got, cur)
	}

	got, cur = samplePosition(keys, 0, 1.5)
	if !got.ApproxEqual(vec(2.5, 0, 0), 1e-6) || cur != 2 {
		t.Errorf("after step: got %v cursor %d, want (2.5,0,0) cursor 2", got, cur)
	}
}
