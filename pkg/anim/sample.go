package anim

import "github.com/Faultbox/midgard-anim/pkg/math"

type timed interface {
	keyTime() float32
}

// seek advances cur while time is past the next key and returns the
// interpolation fraction between keys[cur] and keys[cur+1].
// The cursor only moves forward and never passes len(keys)-2, so the final
// key is only ever used as the interpolation target. Requires len(keys) >= 2.
func seek[K timed](keys []K, cur int, time float32) (int, float32) {
	last := len(keys) - 2
	if cur > last {
		cur = last
	}
	for cur < last && time > keys[cur+1].keyTime() {
		cur++
	}

	t0 := keys[cur].keyTime()
	t1 := keys[cur+1].keyTime()
	span := t1 - t0
	if span <= 0 {
		if time >= t1 {
			return cur, 1
		}
		return cur, 0
	}
	return cur, clamp01((time - t0) / span)
}

// samplePosition returns the interpolated position and the updated cursor.
func samplePosition(keys []Vec3Key, cur int, time float32) (math.Vec3, int) {
	if len(keys) == 1 {
		return keys[0].Value, 0
	}
	cur, t := seek(keys, cur, time)
	return keys[cur].Value.Lerp(keys[cur+1].Value, t), cur
}

// sampleRotation returns the interpolated rotation and the updated cursor.
func sampleRotation(keys []QuatKey, cur int, time float32) (math.Quat, int) {
	if len(keys) == 1 {
		return keys[0].Value, 0
	}
	cur, t := seek(keys, cur, time)
	return keys[cur].Value.Slerp(keys[cur+1].Value, t), cur
}

func clamp01(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v >= 0:
		return v
	default:
		// negative and NaN
		return 0
	}
}
