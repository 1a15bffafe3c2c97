package llm

import "context"

// Theme is the structured outcome of the theme definition stage.
type Theme struct {
	Theme  string `json:"theme"`
	Intent string `json:"user_intent"`
}

// Metadata is the SEO output for the finished video.
type Metadata struct {
	Title       string   `json:"video_title"`
	Description string   `json:"video_description"`
	Tags        []string `json:"tags"`
}

// Client is the text backend used by every drafting stage. Implementations
// must be safe for concurrent use by the scene fan-out.
type Client interface {
	ProposeTheme(ctx context.Context, request string) (*Theme, error)
	ReviseTheme(ctx context.Context, previous *Theme, feedback string) (*Theme, error)
	ExpertResearch(ctx context.Context, theme *Theme) (string, error)
	WebResearch(ctx context.Context, theme *Theme) (string, error)
	CompileResearch(ctx context.Context, theme *Theme, expert, web string) (string, error)
	DraftScript(ctx context.Context, theme *Theme, research string) (string, error)
	ReviseScript(ctx context.Context, theme *Theme, script, feedback string) (string, error)
	BreakdownScenes(ctx context.Context, script string) ([]string, error)
	ImagePrompt(ctx context.Context, theme, narration string) (string, error)
	VideoPrompt(ctx context.Context, theme, narration string) (string, error)
	OptimizeSEO(ctx context.Context, script string) (*Metadata, error)
}
