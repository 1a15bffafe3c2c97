package media

import "context"

// Kind selects which generative backend a request targets.
type Kind string

const (
	KindVoiceover Kind = "voiceover"
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
)

// Request is a single asset generation call. The prompt carries narration
// text for voiceovers and a generation prompt for images and videos.
type Request struct {
	Kind       Kind
	Prompt     string
	OutputPath string
}

// Generator produces one media asset per call and writes it to
// Request.OutputPath. Implementations must be safe for concurrent use;
// the scene coordinator issues calls in parallel.
type Generator interface {
	Generate(ctx context.Context, req Request) error
}
