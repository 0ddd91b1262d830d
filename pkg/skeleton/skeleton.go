// Package skeleton provides an ordered joint hierarchy with a base (bind)
// pose and a mutable current pose.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Errors returned by New.
var (
	ErrParentOrder   = errors.New("joint parent must precede the joint")
	ErrDuplicateName = errors.New("duplicate joint name")
)

// Joint is a single node of the hierarchy.
// Parent is the index of the parent joint, or -1 for a root.
type Joint struct {
	Name   string
	Parent int

	// Base pose, read-only after construction.
	BasePosition math.Vec3
	BaseRotation math.Quat

	// Current pose, written by animation.
	Position math.Vec3
	Rotation math.Quat
}

// Skeleton is an ordered list of joints where every parent comes before
// its children.
type Skeleton struct {
	joints []Joint
	names  map[string]int
}

// New creates a skeleton from joints. The current pose of every joint is
// reset to its base pose. A zero-valued BaseRotation is treated as identity.
func New(joints []Joint) (*Skeleton, error) {
	s := &Skeleton{
		joints: make([]Joint, len(joints)),
		names:  make(map[string]int, len(joints)),
	}
	for i, j := range joints {
		if j.Parent < -1 || j.Parent >= i {
			return nil, fmt.Errorf("joint %d (%q) parent %d: %w", i, j.Name, j.Parent, ErrParentOrder)
		}
		if j.Name != "" {
			if prev, ok := s.names[j.Name]; ok {
				return nil, fmt.Errorf("joint %d and %d named %q: %w", prev, i, j.Name, ErrDuplicateName)
			}
			s.names[j.Name] = i
		}
		if j.BaseRotation == (math.Quat{}) {
			j.BaseRotation = math.QuatIdentity()
		}
		j.Position = j.BasePosition
		j.Rotation = j.BaseRotation
		s.joints[i] = j
	}
	return s, nil
}

// JointCount returns the number of joints.
func (s *Skeleton) JointCount() int {
	return len(s.joints)
}

// Joint returns a copy of the joint at index i.
func (s *Skeleton) Joint(i int) Joint {
	return s.joints[i]
}

// FindJoint returns the index of the named joint, or -1.
func (s *Skeleton) FindJoint(name string) int {
	if i, ok := s.names[name]; ok {
		return i
	}
	return -1
}

// BasePose returns the base position and rotation of joint i.
func (s *Skeleton) BasePose(i int) (math.Vec3, math.Quat) {
	j := &s.joints[i]
	return j.BasePosition, j.BaseRotation
}

// Pose returns the current position and rotation of joint i.
func (s *Skeleton) Pose(i int) (math.Vec3, math.Quat) {
	j := &s.joints[i]
	return j.Position, j.Rotation
}

// SetPose overwrites the current position and rotation of joint i.
func (s *Skeleton) SetPose(i int, pos math.Vec3, rot math.Quat) {
	j := &s.joints[i]
	j.Position = pos
	j.Rotation = rot
}

// ResetToBase restores every joint's current pose to its base pose.
func (s *Skeleton) ResetToBase() {
	for i := range s.joints {
		s.joints[i].Position = s.joints[i].BasePosition
		s.joints[i].Rotation = s.joints[i].BaseRotation
	}
}
