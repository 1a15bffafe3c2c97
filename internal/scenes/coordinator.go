package scenes

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"reelforge/internal/media"
)

const defaultMaxInFlight = 2

// PromptSource generates the per-scene image and video prompts.
type PromptSource interface {
	ImagePrompt(ctx context.Context, theme, narration string) (string, error)
	VideoPrompt(ctx context.Context, theme, narration string) (string, error)
}

// Dirs names the asset subdirectories of a project folder.
type Dirs struct {
	Voiceovers string
	Images     string
	Videos     string
}

type Options struct {
	MaxInFlight  int
	SceneTimeout time.Duration
}

// Summary reports the terminal outcome of one fan-out run.
type Summary struct {
	Ready         int
	Failed        int
	FailedIndices []int
}

func (s Summary) String() string {
	if s.Failed == 0 {
		return fmt.Sprintf("%d scenes ready", s.Ready)
	}
	return fmt.Sprintf("%d scenes ready, %d failed %v", s.Ready, s.Failed, s.FailedIndices)
}

// Coordinator fans per-scene asset generation out over a bounded worker
// pool. Scenes fail independently; one scene's error never aborts its
// siblings, and every scene finishes in a terminal status.
type Coordinator struct {
	prompts PromptSource
	gen     media.Generator
	opts    Options
}

func NewCoordinator(prompts PromptSource, gen media.Generator, opts Options) *Coordinator {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = defaultMaxInFlight
	}
	return &Coordinator{prompts: prompts, gen: gen, opts: opts}
}

// Run processes every scene and returns the list with terminal statuses
// plus an aggregate summary. The input order is preserved regardless of
// completion order.
func (c *Coordinator) Run(ctx context.Context, theme string, input []Scene, dirs Dirs) ([]Scene, Summary) {
	result := make([]Scene, len(input))

	type outcome struct {
		index int
		scene Scene
	}

	outcomes := make(chan outcome, len(input))
	semaphore := make(chan struct{}, c.opts.MaxInFlight)

	for i, scene := range input {
		go func(i int, scene Scene) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			slog.Info("Generating scene assets", "scene", scene.Index, "total", len(input))
			outcomes <- outcome{index: i, scene: c.runScene(ctx, theme, scene, dirs)}
		}(i, scene)
	}

	for range input {
		o := <-outcomes
		result[o.index] = o.scene
	}

	return result, summarize(result)
}

func (c *Coordinator) runScene(ctx context.Context, theme string, scene Scene, dirs Dirs) Scene {
	scene.Status = StatusGenerating

	if c.opts.SceneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.SceneTimeout)
		defer cancel()
	}

	if err := c.generateScene(ctx, theme, &scene, dirs); err != nil {
		slog.Warn("Scene generation failed", "scene", scene.Index, "error", err)
		scene.Status = StatusFailed
		scene.Error = err.Error()
		return scene
	}

	scene.Status = StatusReady
	scene.Error = ""
	return scene
}

func (c *Coordinator) generateScene(ctx context.Context, theme string, scene *Scene, dirs Dirs) error {
	imagePrompt, err := c.prompts.ImagePrompt(ctx, theme, scene.Narration)
	if err != nil {
		return fmt.Errorf("image prompt: %w", err)
	}
	scene.ImagePrompt = imagePrompt

	videoPrompt, err := c.prompts.VideoPrompt(ctx, theme, scene.Narration)
	if err != nil {
		return fmt.Errorf("video prompt: %w", err)
	}
	scene.VideoPrompt = videoPrompt

	voiceoverPath := filepath.Join(dirs.Voiceovers, scene.name()+".wav")
	if err := c.gen.Generate(ctx, media.Request{
		Kind:       media.KindVoiceover,
		Prompt:     scene.Narration,
		OutputPath: voiceoverPath,
	}); err != nil {
		return fmt.Errorf("voiceover: %w", err)
	}
	scene.VoiceoverPath = voiceoverPath

	imagePath := filepath.Join(dirs.Images, scene.name()+".png")
	if err := c.gen.Generate(ctx, media.Request{
		Kind:       media.KindImage,
		Prompt:     scene.ImagePrompt,
		OutputPath: imagePath,
	}); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	scene.ImagePath = imagePath

	videoPath := filepath.Join(dirs.Videos, scene.name()+".mp4")
	if err := c.gen.Generate(ctx, media.Request{
		Kind:       media.KindVideo,
		Prompt:     scene.VideoPrompt,
		OutputPath: videoPath,
	}); err != nil {
		return fmt.Errorf("video: %w", err)
	}
	scene.VideoPath = videoPath

	return nil
}

func summarize(result []Scene) Summary {
	var summary Summary
	for _, scene := range result {
		switch scene.Status {
		case StatusReady:
			summary.Ready++
		case StatusFailed:
			summary.Failed++
			summary.FailedIndices = append(summary.FailedIndices, scene.Index)
		}
	}
	sort.Ints(summary.FailedIndices)
	return summary
}
