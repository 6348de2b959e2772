package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Clip is the keyframe data of one animation track for one target node.
// Times are in milliseconds, non-decreasing; the value arrays that are
// present run parallel to it.
type Clip struct {
	Name   string
	Target NodeID

	Times        []float32
	Translations [][3]float32
	Rotations    []mgl32.Quat
	Scales       [][3]float32

	Duration float32
}

// CompositeClip aggregates every per-target clip of one document into a
// single skinning clip.
type CompositeClip struct {
	Name     string
	Clips    []*Clip
	Duration float32
	Loop     bool
}

func (cc *CompositeClip) Add(c *Clip) {
	cc.Clips = append(cc.Clips, c)
	if c.Duration > cc.Duration {
		cc.Duration = c.Duration
	}
}
