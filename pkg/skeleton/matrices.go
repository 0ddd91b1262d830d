package skeleton

import "github.com/Faultbox/midgard-anim/pkg/math"

var unitScale = math.Vec3{X: 1, Y: 1, Z: 1}

// WorldMatrices computes the model-space transform of every joint from the
// current pose. dst is reused when it has enough capacity.
func (s *Skeleton) WorldMatrices(dst []math.Mat4) []math.Mat4 {
	dst = resize(dst, len(s.joints))
	for i := range s.joints {
		j := &s.joints[i]
		local := math.FromTRS(j.Position, j.Rotation, unitScale)
		if j.Parent >= 0 {
			dst[i] = dst[j.Parent].Mul(local)
		} else {
			dst[i] = local
		}
	}
	return dst
}

// BindMatrices computes the model-space transform of every joint from the
// base pose.
func (s *Skeleton) BindMatrices(dst []math.Mat4) []math.Mat4 {
	dst = resize(dst, len(s.joints))
	for i := range s.joints {
		j := &s.joints[i]
		local := math.FromTRS(j.BasePosition, j.BaseRotation, unitScale)
		if j.Parent >= 0 {
			dst[i] = dst[j.Parent].Mul(local)
		} else {
			dst[i] = local
		}
	}
	return dst
}

// SkinMatrices returns world * inverse(bind) per joint, the matrices a
// skinning shader multiplies bind-pose vertices by.
func (s *Skeleton) SkinMatrices(dst []math.Mat4) []math.Mat4 {
	bind := s.BindMatrices(nil)
	dst = s.WorldMatrices(dst)
	for i := range dst {
		dst[i] = dst[i].Mul(bind[i].InverseRigid())
	}
	return dst
}

func resize(dst []math.Mat4, n int) []math.Mat4 {
	if cap(dst) >= n {
		return dst[:n]
	}
	return make([]math.Mat4, n)
}
