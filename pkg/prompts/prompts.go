package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

type Prompts struct {
	System   SystemPrompts   `yaml:"system"`
	Theme    ThemePrompts    `yaml:"theme"`
	Research ResearchPrompts `yaml:"research"`
	Script   ScriptPrompts   `yaml:"script"`
	Scenes   ScenePrompts    `yaml:"scenes"`
	SEO      SEOPrompts      `yaml:"seo"`
}

type SystemPrompts struct {
	Default    string `yaml:"default"`
	Researcher string `yaml:"researcher"`
	Writer     string `yaml:"writer"`
	Editor     string `yaml:"editor"`
	SEO        string `yaml:"seo"`
}

type ThemePrompts struct {
	Propose string `yaml:"propose"`
	Revise  string `yaml:"revise"`
}

type ResearchPrompts struct {
	Expert  string `yaml:"expert"`
	Web     string `yaml:"web"`
	Compile string `yaml:"compile"`
}

type ScriptPrompts struct {
	Draft  string `yaml:"draft"`
	Revise string `yaml:"revise"`
}

type ScenePrompts struct {
	Breakdown   string `yaml:"breakdown"`
	ImagePrompt string `yaml:"image_prompt"`
	VideoPrompt string `yaml:"video_prompt"`
}

type SEOPrompts struct {
	Optimize string `yaml:"optimize"`
}

type ThemeParams struct {
	Request  string
	Theme    string
	Feedback string
}

type ResearchParams struct {
	Theme    string
	Intent   string
	Expert   string
	Web      string
	Compiled string
}

type ScriptParams struct {
	Theme    string
	Research string
	Script   string
	Feedback string
}

type SceneParams struct {
	Script    string
	Narration string
	Theme     string
}

type SEOParams struct {
	Script string
}

func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return &p, nil
}

func (p *Prompts) RenderThemePropose(params ThemeParams) (string, error) {
	return render(p.Theme.Propose, params)
}

func (p *Prompts) RenderThemeRevise(params ThemeParams) (string, error) {
	return render(p.Theme.Revise, params)
}

func (p *Prompts) RenderResearchExpert(params ResearchParams) (string, error) {
	return render(p.Research.Expert, params)
}

func (p *Prompts) RenderResearchWeb(params ResearchParams) (string, error) {
	return render(p.Research.Web, params)
}

func (p *Prompts) RenderResearchCompile(params ResearchParams) (string, error) {
	return render(p.Research.Compile, params)
}

func (p *Prompts) RenderScriptDraft(params ScriptParams) (string, error) {
	return render(p.Script.Draft, params)
}

func (p *Prompts) RenderScriptRevise(params ScriptParams) (string, error) {
	return render(p.Script.Revise, params)
}

func (p *Prompts) RenderSceneBreakdown(params SceneParams) (string, error) {
	return render(p.Scenes.Breakdown, params)
}

func (p *Prompts) RenderImagePrompt(params SceneParams) (string, error) {
	return render(p.Scenes.ImagePrompt, params)
}

func (p *Prompts) RenderVideoPrompt(params SceneParams) (string, error) {
	return render(p.Scenes.VideoPrompt, params)
}

func (p *Prompts) RenderSEO(params SEOParams) (string, error) {
	return render(p.SEO.Optimize, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
