package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"reelforge/internal/llm"
	"reelforge/pkg/prompts"
)

var _ llm.Client = (*Client)(nil)

type Client struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewClient(apiKey, model string, p *prompts.Prompts) (*Client, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *Client) ProposeTheme(ctx context.Context, request string) (*llm.Theme, error) {
	prompt, err := c.prompts.RenderThemePropose(prompts.ThemeParams{Request: request})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSONContent(ctx, c.prompts.System.Default, prompt)
	if err != nil {
		return nil, err
	}

	return parseTheme(content)
}

func (c *Client) ReviseTheme(ctx context.Context, previous *llm.Theme, feedback string) (*llm.Theme, error) {
	prompt, err := c.prompts.RenderThemeRevise(prompts.ThemeParams{
		Theme:    previous.Theme,
		Feedback: feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSONContent(ctx, c.prompts.System.Default, prompt)
	if err != nil {
		return nil, err
	}

	return parseTheme(content)
}

func (c *Client) ExpertResearch(ctx context.Context, theme *llm.Theme) (string, error) {
	prompt, err := c.prompts.RenderResearchExpert(prompts.ResearchParams{
		Theme:  theme.Theme,
		Intent: theme.Intent,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Researcher, prompt)
}

func (c *Client) WebResearch(ctx context.Context, theme *llm.Theme) (string, error) {
	prompt, err := c.prompts.RenderResearchWeb(prompts.ResearchParams{
		Theme:  theme.Theme,
		Intent: theme.Intent,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Researcher, prompt)
}

func (c *Client) CompileResearch(ctx context.Context, theme *llm.Theme, expert, web string) (string, error) {
	prompt, err := c.prompts.RenderResearchCompile(prompts.ResearchParams{
		Theme:  theme.Theme,
		Expert: expert,
		Web:    web,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Researcher, prompt)
}

func (c *Client) DraftScript(ctx context.Context, theme *llm.Theme, research string) (string, error) {
	prompt, err := c.prompts.RenderScriptDraft(prompts.ScriptParams{
		Theme:    theme.Theme,
		Research: research,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Writer, prompt)
}

func (c *Client) ReviseScript(ctx context.Context, theme *llm.Theme, script, feedback string) (string, error) {
	prompt, err := c.prompts.RenderScriptRevise(prompts.ScriptParams{
		Theme:    theme.Theme,
		Script:   script,
		Feedback: feedback,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Writer, prompt)
}

func (c *Client) BreakdownScenes(ctx context.Context, script string) ([]string, error) {
	prompt, err := c.prompts.RenderSceneBreakdown(prompts.SceneParams{Script: script})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSONContent(ctx, c.prompts.System.Editor, prompt)
	if err != nil {
		return nil, err
	}

	scenes, err := parseJSONArray[string](content, []string{"scenes", "segments", "results"})
	if err != nil {
		return nil, err
	}

	return trimScenes(scenes), nil
}

func (c *Client) ImagePrompt(ctx context.Context, theme, narration string) (string, error) {
	prompt, err := c.prompts.RenderImagePrompt(prompts.SceneParams{Theme: theme, Narration: narration})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Editor, prompt)
}

func (c *Client) VideoPrompt(ctx context.Context, theme, narration string) (string, error) {
	prompt, err := c.prompts.RenderVideoPrompt(prompts.SceneParams{Theme: theme, Narration: narration})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Editor, prompt)
}

func (c *Client) OptimizeSEO(ctx context.Context, script string) (*llm.Metadata, error) {
	prompt, err := c.prompts.RenderSEO(prompts.SEOParams{Script: script})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generateJSONContent(ctx, c.prompts.System.SEO, prompt)
	if err != nil {
		return nil, err
	}

	var meta llm.Metadata
	if err := json.Unmarshal([]byte(content), &meta); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("no title in response")
	}

	meta.Title = cleanTitle(meta.Title)
	meta.Tags = cleanTags(meta.Tags)
	return &meta, nil
}

func parseTheme(content string) (*llm.Theme, error) {
	var theme llm.Theme
	if err := json.Unmarshal([]byte(content), &theme); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if theme.Theme == "" {
		return nil, fmt.Errorf("no theme in response")
	}
	theme.Theme = strings.TrimSpace(theme.Theme)
	return &theme, nil
}

func parseJSONArray[T any](content string, keys []string) ([]T, error) {
	var direct []T
	if err := json.Unmarshal([]byte(content), &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var wrapped map[string][]T
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	for _, key := range keys {
		if items, ok := wrapped[key]; ok && len(items) > 0 {
			return items, nil
		}
	}

	for _, items := range wrapped {
		if len(items) > 0 {
			return items, nil
		}
	}

	return nil, fmt.Errorf("no items found in response")
}

func trimScenes(scenes []string) []string {
	result := make([]string, 0, len(scenes))
	for _, s := range scenes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		result = append(result, s)
	}
	return result
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "\"'")

	if idx := strings.Index(title, "\n"); idx > 0 {
		title = title[:idx]
	}

	title = strings.TrimSpace(title)

	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}

	return title
}

func cleanTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool)

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		tag = strings.Trim(tag, "#")
		tag = strings.ToLower(tag)

		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}

	return result
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doGenerate(ctx, systemPrompt, userPrompt, false)
}

func (c *Client) generateJSONContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doGenerate(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) doGenerate(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
	}

	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
