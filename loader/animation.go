package loader

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/scene"
	"github.com/mogaika/gltf_scene_browser/utils"
)

// parseAnimations turns every animation entry into one clip keyed by its
// target node. Tracks without a decodable TIME parameter or without
// channels are dropped whole; a later track for an already clipped target
// replaces the earlier one. All surviving clips aggregate into a single
// looping composite attached to the library and every skeleton.
func (s *parseState) parseAnimations() {
	clips := make(map[string]*scene.Clip)

	for _, animID := range sortedKeys(s.doc.Animations) {
		a := s.doc.Animations[animID]
		if len(a.Channels) == 0 {
			log.Printf("Animation %q has no channels, dropping", animID)
			continue
		}
		timeAcc, ok := a.Parameters["TIME"]
		if !ok {
			log.Printf("Animation %q has no TIME parameter, dropping", animID)
			continue
		}
		times, comps := s.dec.Floats(timeAcc, false)
		if len(times) == 0 || comps != 1 {
			log.Printf("Animation %q TIME parameter is unusable, dropping", animID)
			continue
		}

		// the target comes from the first channel; legacy documents
		// repeat the same target across every channel of a track
		ch := a.Channels[0]
		if ch == nil || ch.Target == nil || ch.Target.ID == "" {
			log.Printf("Animation %q has no usable target, dropping", animID)
			continue
		}
		targetDoc := ch.Target.ID
		targetNID, ok := s.nodesByID[targetDoc]
		if !ok {
			log.Printf("Animation %q targets missing node %q, dropping", animID, targetDoc)
			continue
		}

		name := a.Name
		if name == "" {
			name = animID
		}
		clip := &scene.Clip{Name: name, Target: targetNID}
		clip.Times = make([]float32, len(times))
		for i, t := range times {
			clip.Times[i] = t * 1000.0
		}
		clip.Duration = clip.Times[len(clip.Times)-1]

		if accID, ok := a.Parameters["rotation"]; ok {
			data, comps := s.dec.Floats(accID, false)
			if data != nil && comps == 4 {
				n := len(data) / 4
				clip.Rotations = make([]mgl32.Quat, n)
				for i := 0; i < n; i++ {
					axis := mgl32.Vec3{data[i*4], data[i*4+1], data[i*4+2]}
					clip.Rotations[i] = utils.AxisAngleToQuat(axis, data[i*4+3])
				}
			} else {
				log.Printf("Animation %q rotation parameter is unusable", animID)
			}
		}
		if accID, ok := a.Parameters["translation"]; ok {
			if data, comps := s.dec.Floats(accID, false); data != nil && comps == 3 {
				clip.Translations = groupVec3(name, "translation", data, comps)
			} else {
				log.Printf("Animation %q translation parameter is unusable", animID)
			}
		}
		if accID, ok := a.Parameters["scale"]; ok {
			if data, comps := s.dec.Floats(accID, false); data != nil && comps == 3 {
				clip.Scales = groupVec3(name, "scale", data, comps)
			} else {
				log.Printf("Animation %q scale parameter is unusable", animID)
			}
		}

		clips[targetDoc] = clip
	}

	if len(clips) == 0 {
		return
	}
	composite := &scene.CompositeClip{Name: s.doc.Name, Loop: true}
	for _, target := range sortedKeys(clips) {
		composite.Add(clips[target])
	}
	s.lib.Animation = composite
	for _, skinID := range sortedKeys(s.lib.Skeletons) {
		s.lib.Skeletons[skinID].Clip = composite
	}
}
