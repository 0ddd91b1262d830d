package anim

import (
	"fmt"

	"go.uber.org/zap"
)

// NodeID addresses a node inside a BlendTree.
type NodeID int

// NoNode marks an absent node.
const NoNode NodeID = -1

type node struct {
	// Leaf nodes own a player; blend nodes have a nil player.
	player *Player

	mode     BlendMode
	param    float32
	lhs, rhs NodeID
	parent   NodeID
	pose     Pose
	ramp     *paramRamp
}

// paramRamp moves a blend parameter linearly toward a target over time.
type paramRamp struct {
	from, to          float32
	duration, elapsed float32
}

// BlendTree composes player outputs into a final pose.
//
// Nodes live in an arena and are addressed by NodeID. Children must exist
// before their parent is created and may have only one parent, so the tree
// can never contain a cycle or a shared subtree.
type BlendTree struct {
	skel       Skeleton
	jointCount int
	log        *zap.Logger
	playerOpts []PlayerOption

	nodes []node
	root  NodeID
}

// TreeOption configures a BlendTree.
type TreeOption func(*BlendTree)

// WithTreeLogger sets the logger for tree mutations and rejected operations.
// The logger is also handed to every player the tree creates.
func WithTreeLogger(l *zap.Logger) TreeOption {
	return func(t *BlendTree) {
		if l != nil {
			t.log = l
		}
	}
}

// WithPlayerOptions sets options applied to every player the tree creates.
func WithPlayerOptions(opts ...PlayerOption) TreeOption {
	return func(t *BlendTree) {
		t.playerOpts = append(t.playerOpts, opts...)
	}
}

// NewBlendTree creates an empty tree whose players are sized to skel.
func NewBlendTree(skel Skeleton, opts ...TreeOption) *BlendTree {
	t := &BlendTree{
		skel:       skel,
		jointCount: skel.JointCount(),
		log:        zap.NewNop(),
		root:       NoNode,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of nodes.
func (t *BlendTree) Len() int {
	return len(t.nodes)
}

// Root returns the root node, or NoNode for an empty tree.
func (t *BlendTree) Root() NodeID {
	return t.root
}

// SetRoot makes id the node evaluated by Update and written by Apply.
func (t *BlendTree) SetRoot(id NodeID) error {
	if !t.exists(id) {
		return fmt.Errorf("set root %d: %w", id, ErrUnknownNode)
	}
	t.root = id
	return nil
}

// Clear removes every node.
func (t *BlendTree) Clear() {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
	t.root = NoNode
	t.log.Debug("blend tree cleared")
}

// Player returns the player of a leaf node, or nil for blend nodes and
// unknown ids.
func (t *BlendTree) Player(id NodeID) *Player {
	if !t.exists(id) {
		return nil
	}
	return t.nodes[id].player
}

// AddLeaf adds a leaf playing clip. The first node added to an empty tree
// becomes the root.
func (t *BlendTree) AddLeaf(clip *Clip) (NodeID, error) {
	opts := append([]PlayerOption{WithLogger(t.log)}, t.playerOpts...)
	p, err := NewPlayer(clip, t.skel, opts...)
	if err != nil {
		t.log.Warn("rejected leaf", zap.String("clip", clip.Name), zap.Error(err))
		return NoNode, err
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		player: p,
		lhs:    NoNode,
		rhs:    NoNode,
		parent: NoNode,
	})
	if t.root == NoNode {
		t.root = id
	}
	t.log.Debug("added leaf", zap.Int("node", int(id)), zap.String("clip", clip.Name))
	return id, nil
}

// AddBlend adds a node combining lhs and rhs. rhs may be NoNode for
// BlendPass. When lhs or rhs is the current root, the new node becomes the
// root.
func (t *BlendTree) AddBlend(mode BlendMode, param float32, lhs, rhs NodeID) (NodeID, error) {
	if err := t.checkBlend(mode, lhs, rhs); err != nil {
		t.log.Warn("rejected blend node",
			zap.Stringer("mode", mode),
			zap.Int("lhs", int(lhs)),
			zap.Int("rhs", int(rhs)),
			zap.Error(err))
		return NoNode, err
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		mode:   mode,
		param:  param,
		lhs:    lhs,
		rhs:    rhs,
		parent: NoNode,
		pose:   make(Pose, t.jointCount),
	})
	t.nodes[lhs].parent = id
	if rhs != NoNode {
		t.nodes[rhs].parent = id
	}
	if t.root == NoNode || t.root == lhs || t.root == rhs {
		t.root = id
	}
	t.log.Debug("added blend node",
		zap.Int("node", int(id)),
		zap.Stringer("mode", mode),
		zap.Float32("param", param))
	return id, nil
}

// Insert layers clip on top of the current tree. On an empty tree the clip
// becomes the root leaf and mode and param are ignored. Otherwise a new
// leaf is created and the root is replaced by blend(mode, param, root, leaf).
// It returns the id of the new leaf.
func (t *BlendTree) Insert(clip *Clip, mode BlendMode, param float32) (NodeID, error) {
	if t.root == NoNode {
		return t.AddLeaf(clip)
	}
	if !mode.valid() {
		return NoNode, fmt.Errorf("insert %q: %w", clip.Name, ErrUnknownBlendMode)
	}

	oldRoot := t.root
	leaf, err := t.AddLeaf(clip)
	if err != nil {
		return NoNode, err
	}
	if _, err := t.AddBlend(mode, param, oldRoot, leaf); err != nil {
		// Drop the orphaned leaf; it is always the last node.
		t.nodes = t.nodes[:leaf]
		return NoNode, fmt.Errorf("insert %q: %w", clip.Name, err)
	}
	return leaf, nil
}

// Param returns the parameter of a blend node.
func (t *BlendTree) Param(id NodeID) (float32, error) {
	n, err := t.blendNode(id)
	if err != nil {
		return 0, err
	}
	return n.param, nil
}

// SetParam sets the parameter of a blend node and cancels any ramp.
func (t *BlendTree) SetParam(id NodeID, v float32) error {
	n, err := t.blendNode(id)
	if err != nil {
		return err
	}
	n.param = v
	n.ramp = nil
	return nil
}

// RampParam moves the parameter of a blend node linearly to target over
// seconds of Update time. Non-positive durations apply immediately.
func (t *BlendTree) RampParam(id NodeID, target, seconds float32) error {
	n, err := t.blendNode(id)
	if err != nil {
		return err
	}
	if !(seconds > 0) {
		n.param = target
		n.ramp = nil
		return nil
	}
	n.ramp = &paramRamp{from: n.param, to: target, duration: seconds}
	return nil
}

// Ramping reports whether a blend node has a ramp in progress.
func (t *BlendTree) Ramping(id NodeID) bool {
	n, err := t.blendNode(id)
	return err == nil && n.ramp != nil
}

// Update advances every leaf reachable from the root by dt seconds and
// recomputes the blended poses bottom-up. Each leaf is updated once.
func (t *BlendTree) Update(dt float32) {
	if t.root == NoNode {
		return
	}
	t.evaluate(t.root, dt)
}

// Pose returns the root output from the last Update, or nil for an empty
// tree. The slice is owned by the tree.
func (t *BlendTree) Pose() Pose {
	if t.root == NoNode {
		return nil
	}
	return t.output(t.root)
}

// Apply writes the root pose into skel, joint by joint, overwriting
// position and rotation. It is a no-op on an empty tree.
func (t *BlendTree) Apply(skel Skeleton) error {
	if t.root == NoNode {
		return nil
	}
	if n := skel.JointCount(); n != t.jointCount {
		return fmt.Errorf("apply: skeleton has %d joints, tree has %d: %w", n, t.jointCount, ErrJointCountMismatch)
	}
	for i, jp := range t.output(t.root) {
		skel.SetPose(i, jp.Position, jp.Rotation)
	}
	return nil
}

func (t *BlendTree) evaluate(id NodeID, dt float32) Pose {
	n := &t.nodes[id]
	if n.player != nil {
		n.player.Update(dt)
		return n.player.Pose()
	}

	n.advanceRamp(dt)
	lhs := t.evaluate(n.lhs, dt)
	var rhs Pose
	if n.rhs != NoNode {
		rhs = t.evaluate(n.rhs, dt)
	}
	combine(n.pose, lhs, rhs, n.mode, n.param)
	return n.pose
}

func (t *BlendTree) output(id NodeID) Pose {
	n := &t.nodes[id]
	if n.player != nil {
		return n.player.Pose()
	}
	return n.pose
}

func (n *node) advanceRamp(dt float32) {
	r := n.ramp
	if r == nil {
		return
	}
	if dt > 0 {
		r.elapsed += dt
	}
	if r.elapsed >= r.duration {
		n.param = r.to
		n.ramp = nil
		return
	}
	n.param = r.from + (r.to-r.from)*(r.elapsed/r.duration)
}

// isDelta reports whether the output of id is a delta pose.
func (t *BlendTree) isDelta(id NodeID) bool {
	n := &t.nodes[id]
	if n.player != nil {
		return n.player.clip.Delta
	}
	switch n.mode {
	case BlendCrossfade:
		return t.isDelta(n.lhs) && t.isDelta(n.rhs)
	default:
		return t.isDelta(n.lhs)
	}
}

func (t *BlendTree) checkBlend(mode BlendMode, lhs, rhs NodeID) error {
	if !mode.valid() {
		return ErrUnknownBlendMode
	}
	if !t.exists(lhs) {
		return fmt.Errorf("lhs %d: %w", lhs, ErrUnknownNode)
	}
	if rhs == NoNode {
		if mode.needsRHS() {
			return fmt.Errorf("%s: %w", mode, ErrMissingRHS)
		}
	} else if !t.exists(rhs) {
		return fmt.Errorf("rhs %d: %w", rhs, ErrUnknownNode)
	}
	if lhs == rhs {
		return fmt.Errorf("lhs and rhs are both %d: %w", lhs, ErrNodeHasParent)
	}
	if p := t.nodes[lhs].parent; p != NoNode {
		return fmt.Errorf("lhs %d owned by %d: %w", lhs, p, ErrNodeHasParent)
	}
	if rhs != NoNode {
		if p := t.nodes[rhs].parent; p != NoNode {
			return fmt.Errorf("rhs %d owned by %d: %w", rhs, p, ErrNodeHasParent)
		}
	}
	if mode == BlendAdditive && !t.isDelta(rhs) {
		return fmt.Errorf("rhs %d: %w", rhs, ErrAdditiveRequiresDelta)
	}
	return nil
}

func (t *BlendTree) blendNode(id NodeID) (*node, error) {
	if !t.exists(id) {
		return nil, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	n := &t.nodes[id]
	if n.player != nil {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotBlendNode)
	}
	return n, nil
}

func (t *BlendTree) exists(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
