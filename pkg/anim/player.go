package anim

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Skeleton is the joint hierarchy animated by players and blend trees.
type Skeleton interface {
	JointCount() int
	BasePose(i int) (math.Vec3, math.Quat)
	SetPose(i int, pos math.Vec3, rot math.Quat)
}

// JointPose is the sampled transform of one joint.
type JointPose struct {
	Position math.Vec3
	Rotation math.Quat
}

// Pose holds one JointPose per skeleton joint, indexed like the skeleton.
type Pose []JointPose

// LoopMode selects what happens when playback reaches the clip duration.
type LoopMode int

const (
	// LoopWrap restarts from the beginning. Clips are expected to end with
	// a key that repeats the first one.
	LoopWrap LoopMode = iota
	// LoopClamp holds the final pose once the duration is reached.
	LoopClamp
)

// String returns the config name of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopWrap:
		return "wrap"
	case LoopClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// Player advances the local time of one clip and samples it into a pose.
// A Player is not safe for concurrent use.
type Player struct {
	clip  *Clip
	loop  LoopMode
	speed float32
	log   *zap.Logger

	timer    float32
	finished bool

	// Last key index known not to exceed timer, per track.
	posCursor []int
	rotCursor []int

	pose Pose
	rest Pose
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLoopMode sets the end-of-clip policy. The default is LoopWrap.
func WithLoopMode(m LoopMode) PlayerOption {
	return func(p *Player) {
		p.loop = m
	}
}

// WithSpeed sets the playback rate multiplier. The default is 1.
func WithSpeed(s float32) PlayerOption {
	return func(p *Player) {
		p.speed = s
	}
}

// WithLogger sets the logger used for playback events.
func WithLogger(l *zap.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPlayer creates a player for clip sized to skel. The clip must outlive
// the player and must not be modified while in use.
//
// The pose starts at zero position and identity rotation for delta clips,
// and at the skeleton base pose otherwise.
func NewPlayer(clip *Clip, skel Skeleton, opts ...PlayerOption) (*Player, error) {
	n := skel.JointCount()
	if err := clip.Validate(n); err != nil {
		return nil, err
	}

	p := &Player{
		clip:      clip,
		speed:     1,
		log:       zap.NewNop(),
		posCursor: make([]int, len(clip.Tracks)),
		rotCursor: make([]int, len(clip.Tracks)),
		pose:      make(Pose, n),
		rest:      make(Pose, n),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.rest {
		if clip.Delta {
			p.rest[i] = JointPose{Rotation: math.QuatIdentity()}
		} else {
			pos, rot := skel.BasePose(i)
			p.rest[i] = JointPose{Position: pos, Rotation: rot}
		}
	}
	copy(p.pose, p.rest)
	return p, nil
}

// Clip returns the clip being played.
func (p *Player) Clip() *Clip {
	return p.clip
}

// Time returns the current playback time in seconds.
func (p *Player) Time() float32 {
	return p.timer
}

// Speed returns the playback rate multiplier.
func (p *Player) Speed() float32 {
	return p.speed
}

// SetSpeed sets the playback rate multiplier. Non-positive rates hold time.
func (p *Player) SetSpeed(s float32) {
	p.speed = s
}

// LoopMode returns the end-of-clip policy.
func (p *Player) LoopMode() LoopMode {
	return p.loop
}

// Finished reports whether a clamped player has reached the end of its clip.
// Always false for wrapping players.
func (p *Player) Finished() bool {
	return p.finished
}

// Pose returns the pose sampled by the last Update. The slice is owned by
// the player and is overwritten by the next Update.
func (p *Player) Pose() Pose {
	return p.pose
}

// Update advances playback by dt seconds (scaled by the speed) and samples
// every track at the new time. Zero-duration clips do not advance.
func (p *Player) Update(dt float32) {
	step := dt * p.speed
	if p.clip.Duration > 0 && step > 0 && !math32.IsInf(step, 1) {
		p.advance(step)
	}
	p.sample()
}

// Seek jumps to time t, wrapped or clamped into the clip, and resamples.
func (p *Player) Seek(t float32) {
	if !(t > 0) {
		t = 0
	}
	p.timer = 0
	p.finished = false
	p.resetCursors()
	if p.clip.Duration > 0 && t > 0 && !math32.IsInf(t, 1) {
		p.advance(t)
	}
	p.sample()
}

// Reset rewinds to time zero and restores the initial pose.
func (p *Player) Reset() {
	p.timer = 0
	p.finished = false
	p.resetCursors()
	copy(p.pose, p.rest)
}

func (p *Player) advance(step float32) {
	d := p.clip.Duration
	p.timer += step

	if p.loop == LoopClamp {
		if p.timer >= d {
			p.timer = d
			if !p.finished {
				p.finished = true
				p.log.Debug("clip finished", zap.String("clip", p.clip.Name))
			}
		}
		return
	}

	if p.timer > d {
		// Mod is exact for any magnitude. A zero remainder lands on d,
		// the same result repeated subtraction gives.
		loops := math32.Floor(p.timer / d)
		p.timer = math32.Mod(p.timer, d)
		if !(p.timer > 0) {
			p.timer = d
		}
		p.resetCursors()
		p.log.Debug("clip wrapped",
			zap.String("clip", p.clip.Name),
			zap.Float32("loops", loops),
			zap.Float32("time", p.timer))
	}
}

func (p *Player) resetCursors() {
	clear(p.posCursor)
	clear(p.rotCursor)
}

func (p *Player) sample() {
	for ti := range p.clip.Tracks {
		tr := &p.clip.Tracks[ti]
		jp := &p.pose[tr.Joint]
		if len(tr.Positions) > 0 {
			jp.Position, p.posCursor[ti] = samplePosition(tr.Positions, p.posCursor[ti], p.timer)
		}
		if len(tr.Rotations) > 0 {
			jp.Rotation, p.rotCursor[ti] = sampleRotation(tr.Rotations, p.rotCursor[ti], p.timer)
		}
	}
}
