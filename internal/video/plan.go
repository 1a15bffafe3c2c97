package video

import (
	"errors"
	"fmt"
	"sort"

	"reelforge/internal/scenes"
)

// Policy decides what happens when a scene is missing from the approved
// sequence at assembly time.
type Policy string

const (
	// PolicyStrict aborts assembly when any scene is not ready.
	PolicyStrict Policy = "strict"
	// PolicySkipFailed drops failed scenes and records a warning each.
	PolicySkipFailed Policy = "skip_failed"
)

var ErrNoReadyScenes = errors.New("no ready scenes to assemble")

// Segment is one scene's contribution to the final cut.
type Segment struct {
	Index     int
	VideoPath string
	AudioPath string
}

// Plan is the ordered assembly schedule. Segments are always in ascending
// scene index order, whatever order the fan-out finished in.
type Plan struct {
	Segments []Segment
	Warnings []string
}

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyStrict, PolicySkipFailed:
		return Policy(raw), nil
	default:
		return "", fmt.Errorf("unknown assembly policy: %q", raw)
	}
}

// BuildPlan validates the scene sequence against the policy and produces
// the ordered segment list. It touches no files, so the ordering and gap
// handling contracts are testable without ffmpeg.
func BuildPlan(list []scenes.Scene, policy Policy) (*Plan, error) {
	ordered := make([]scenes.Scene, len(list))
	copy(ordered, list)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	plan := &Plan{}
	for _, scene := range ordered {
		if scene.Status != scenes.StatusReady {
			if policy == PolicyStrict {
				return nil, fmt.Errorf("missing scene %d: %s", scene.Index, describeGap(scene))
			}
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("skipping scene %d: %s", scene.Index, describeGap(scene)))
			continue
		}

		plan.Segments = append(plan.Segments, Segment{
			Index:     scene.Index,
			VideoPath: scene.VideoPath,
			AudioPath: scene.VoiceoverPath,
		})
	}

	if len(plan.Segments) == 0 {
		return nil, ErrNoReadyScenes
	}

	return plan, nil
}

func describeGap(scene scenes.Scene) string {
	if scene.Error != "" {
		return scene.Error
	}
	return fmt.Sprintf("status %s", scene.Status)
}
