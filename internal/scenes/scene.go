package scenes

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Scene is one ordered segment of the final video with its own narration
// and generated assets.
type Scene struct {
	Index         int    `json:"index"`
	Narration     string `json:"narration"`
	ImagePrompt   string `json:"image_prompt,omitempty"`
	VideoPrompt   string `json:"video_prompt,omitempty"`
	Status        Status `json:"status"`
	VoiceoverPath string `json:"voiceover_path,omitempty"`
	ImagePath     string `json:"image_path,omitempty"`
	VideoPath     string `json:"video_path,omitempty"`
	Error         string `json:"error,omitempty"`
}

// FromNarrations builds the pending scene list for an approved script
// breakdown, preserving segment order.
func FromNarrations(narrations []string) []Scene {
	result := make([]Scene, len(narrations))
	for i, narration := range narrations {
		result[i] = Scene{
			Index:     i,
			Narration: narration,
			Status:    StatusPending,
		}
	}
	return result
}

func (s *Scene) name() string {
	return fmt.Sprintf("scene_%03d", s.Index)
}
