package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/midgard-anim/internal/cliplib"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/Faultbox/midgard-anim/pkg/skeleton"
)

func formatFloat(v float32, prec int) string {
	s := strconv.FormatFloat(float64(v), 'f', prec, 32)
	// Drop the sign of values that round to zero.
	if strings.TrimLeft(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

func formatVec3(v math.Vec3, prec int) string {
	return fmt.Sprintf("(%s, %s, %s)",
		formatFloat(v.X, prec), formatFloat(v.Y, prec), formatFloat(v.Z, prec))
}

func formatQuat(q math.Quat, prec int) string {
	return fmt.Sprintf("(%s, %s, %s, %s)",
		formatFloat(q.X, prec), formatFloat(q.Y, prec), formatFloat(q.Z, prec), formatFloat(q.W, prec))
}

func jointLabel(skel *skeleton.Skeleton, i int) string {
	if name := skel.Joint(i).Name; name != "" {
		return name
	}
	return "#" + strconv.Itoa(i)
}

// writePose prints one line per joint. World matrices are optional.
func writePose(w io.Writer, skel *skeleton.Skeleton, pose anim.Pose, world []math.Mat4, prec int) {
	for i, jp := range pose {
		fmt.Fprintf(w, "  %-12s pos %s rot %s", jointLabel(skel, i),
			formatVec3(jp.Position, prec), formatQuat(jp.Rotation, prec))
		if i < len(world) {
			fmt.Fprintf(w, " world %s", formatVec3(world[i].Translation(), prec))
		}
		fmt.Fprintln(w)
	}
}

func writeInfo(w io.Writer, lib *cliplib.Library) {
	skel := lib.Skeleton
	fmt.Fprintf(w, "Library: %s\n", lib.Path)
	fmt.Fprintf(w, "Joints:  %d\n", skel.JointCount())
	for i := 0; i < skel.JointCount(); i++ {
		parent := "-"
		if p := skel.Joint(i).Parent; p >= 0 {
			parent = jointLabel(skel, p)
		}
		fmt.Fprintf(w, "  %2d %-12s parent %s\n", i, jointLabel(skel, i), parent)
	}

	names := lib.ClipNames()
	fmt.Fprintf(w, "Clips:   %d\n", len(names))
	for _, name := range names {
		clip, _ := lib.Clip(name)
		pos, rot := clip.KeyCount()
		kind := "absolute"
		if clip.Delta {
			kind = "delta"
		}
		fmt.Fprintf(w, "  %-12s %-8s duration %-8s tracks %-3d keys %d pos / %d rot\n",
			name, kind, formatFloat(clip.Duration, 3), len(clip.Tracks), pos, rot)
	}

	fmt.Fprintf(w, "Layers:  %d\n", len(lib.Layers))
	for i, layer := range lib.Layers {
		fmt.Fprintf(w, "  %2d %-12s %-9s param %s\n", i, layer.Clip, layer.Mode, formatFloat(layer.Param, 3))
	}
}
