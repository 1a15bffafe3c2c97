package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genai"

	"reelforge/internal/media"
)

var _ media.Generator = (*Client)(nil)

type Options struct {
	Project      string
	Location     string
	TTSModel     string
	ImageModel   string
	VideoModel   string
	VoiceName    string
	AspectRatio  string
	ClipSeconds  int
	PollInterval time.Duration
}

// Client generates voiceovers, images and video clips through the Gemini
// API family: TTS for narration, Imagen for stills, Veo for motion clips.
type Client struct {
	client *genai.Client
	opts   Options
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  opts.Project,
		Location: opts.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}

	return &Client{client: client, opts: opts}, nil
}

func (c *Client) Generate(ctx context.Context, req media.Request) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	var data []byte
	var err error
	switch req.Kind {
	case media.KindVoiceover:
		data, err = c.generateSpeech(ctx, req.Prompt)
	case media.KindImage:
		data, err = c.generateImage(ctx, req.Prompt)
	case media.KindVideo:
		data, err = c.generateVideo(ctx, req.Prompt)
	default:
		return fmt.Errorf("unknown media kind: %s", req.Kind)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(req.OutputPath, data, 0644); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}

func (c *Client) generateSpeech(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.opts.VoiceName,
				},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.opts.TTSModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no audio in response")
	}

	part := resp.Candidates[0].Content.Parts[0]
	if part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return nil, fmt.Errorf("empty audio in response")
	}

	// The TTS endpoint returns raw PCM; frame it so ffmpeg can read it.
	return media.WrapPCM(part.InlineData.Data), nil
}

func (c *Client) generateImage(ctx context.Context, prompt string) ([]byte, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    c.opts.AspectRatio,
	}

	resp, err := c.client.Models.GenerateImages(ctx, c.opts.ImageModel, prompt, config)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image in response")
	}

	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

func (c *Client) generateVideo(ctx context.Context, prompt string) ([]byte, error) {
	config := &genai.GenerateVideosConfig{
		NumberOfVideos:  1,
		AspectRatio:     c.opts.AspectRatio,
		DurationSeconds: genai.Ptr(int32(c.opts.ClipSeconds)),
	}

	operation, err := c.client.Models.GenerateVideos(ctx, c.opts.VideoModel, prompt, nil, config)
	if err != nil {
		return nil, fmt.Errorf("generate video: %w", err)
	}

	for !operation.Done {
		slog.Debug("Waiting for video generation", "operation", operation.Name)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}

		operation, err = c.client.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("poll video operation: %w", err)
		}
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		return nil, fmt.Errorf("no video in response")
	}

	video := operation.Response.GeneratedVideos[0].Video
	if video == nil || len(video.VideoBytes) == 0 {
		return nil, fmt.Errorf("empty video in response")
	}

	return video.VideoBytes, nil
}
