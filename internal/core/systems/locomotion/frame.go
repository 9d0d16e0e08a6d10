package locomotion

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/spatial"
)

// Frame is the committed output of one tick.
type Frame struct {
	Seq          uint64            `json:"seq"`
	Time         time.Duration     `json:"time"`
	Viewpoint    spatial.Transform `json:"viewpoint"`
	Rig          spatial.Transform `json:"rig"`
	Displacement mgl64.Vec3        `json:"displacement"`
	Flying       bool              `json:"flying"`
	Jump         JumpPhase         `json:"jump"`
	Traveling    bool              `json:"traveling"`
	Digest       uint64            `json:"digest"`
}

// digest hashes everything but Seq and Digest itself, so two runs fed the same
// inputs produce the same sequence of digests.
func (f Frame) digest() uint64 {
	buf := make([]byte, 0, 8*26+4)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(f.Time))
	buf = appendTransform(buf, f.Viewpoint)
	buf = appendTransform(buf, f.Rig)
	buf = appendVec(buf, f.Displacement)
	buf = append(buf, boolByte(f.Flying), byte(f.Jump), boolByte(f.Traveling))
	return xxhash.Sum64(buf)
}

func appendTransform(buf []byte, t spatial.Transform) []byte {
	buf = appendVec(buf, t.Position)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.Rotation.W))
	buf = appendVec(buf, t.Rotation.V)
	return appendVec(buf, t.Scale)
}

func appendVec(buf []byte, v mgl64.Vec3) []byte {
	for _, c := range v {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
