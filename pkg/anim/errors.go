package anim

import "errors"

// Clip validation errors.
var (
	ErrInvalidDuration  = errors.New("clip duration must be finite and non-negative")
	ErrJointOutOfRange  = errors.New("track joint index out of range")
	ErrDuplicateTrack   = errors.New("more than one track for joint")
	ErrNonMonotonicKeys = errors.New("keyframe times must be finite, non-negative and ascending")
	ErrAlreadyDelta     = errors.New("clip is already a delta clip")
)

// Blend tree errors.
var (
	ErrUnknownNode           = errors.New("unknown blend node")
	ErrNodeHasParent         = errors.New("blend node already has a parent")
	ErrNotBlendNode          = errors.New("node is a leaf, not a blend node")
	ErrUnknownBlendMode      = errors.New("unknown blend mode")
	ErrMissingRHS            = errors.New("blend mode requires a right-hand input")
	ErrAdditiveRequiresDelta = errors.New("additive blend requires a delta right-hand input")
	ErrJointCountMismatch    = errors.New("skeleton joint count does not match")
)
