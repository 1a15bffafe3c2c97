package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultFPS        = 24
)

type AssemblerOptions struct {
	FFmpegPath string
	Resolution string
	FPS        int

	// Run overrides command execution. Nil means exec ffmpeg for real.
	Run func(ctx context.Context, name string, args ...string) error
}

type AssembleResult struct {
	OutputPath string
	SceneCount int
	Warnings   []string
}

// Assembler muxes each segment's video clip with its voiceover and
// concatenates the segments into the final cut, in plan order.
type Assembler struct {
	ffmpegPath string
	width      int
	height     int
	fps        int
	run        func(ctx context.Context, name string, args ...string) error
}

func NewAssembler(opts AssemblerOptions) *Assembler {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = defaultFFmpegPath
	}
	if opts.FPS == 0 {
		opts.FPS = defaultFPS
	}
	width, height := parseResolution(opts.Resolution)

	a := &Assembler{
		ffmpegPath: opts.FFmpegPath,
		width:      width,
		height:     height,
		fps:        opts.FPS,
	}
	if opts.Run != nil {
		a.run = opts.Run
	} else {
		a.run = a.runCommand
	}
	return a
}

func (a *Assembler) Assemble(ctx context.Context, plan *Plan, workDir, outputPath string) (*AssembleResult, error) {
	if plan == nil || len(plan.Segments) == 0 {
		return nil, ErrNoReadyScenes
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	segmentPaths := make([]string, 0, len(plan.Segments))
	for _, segment := range plan.Segments {
		segmentPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", segment.Index))
		if err := a.muxSegment(ctx, segment, segmentPath); err != nil {
			return nil, fmt.Errorf("mux scene %d: %w", segment.Index, err)
		}
		segmentPaths = append(segmentPaths, segmentPath)
	}

	if err := a.concat(ctx, segmentPaths, workDir, outputPath); err != nil {
		return nil, err
	}

	for _, p := range segmentPaths {
		_ = os.Remove(p)
	}

	return &AssembleResult{
		OutputPath: outputPath,
		SceneCount: len(plan.Segments),
		Warnings:   plan.Warnings,
	}, nil
}

// muxSegment pairs a scene clip with its voiceover, scaling to the target
// resolution and padding the shorter stream so narration is never cut off.
func (a *Assembler) muxSegment(ctx context.Context, segment Segment, outputPath string) error {
	args := []string{
		"-y",
		"-i", segment.VideoPath,
		"-i", segment.AudioPath,
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d",
			a.width, a.height, a.width, a.height, a.fps),
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest", "-fflags", "+shortest",
		outputPath,
	}
	return a.run(ctx, a.ffmpegPath, args...)
}

func (a *Assembler) concat(ctx context.Context, segmentPaths []string, workDir, outputPath string) error {
	listPath := filepath.Join(workDir, "concat_list.txt")

	var list strings.Builder
	for _, p := range segmentPaths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		fmt.Fprintf(&list, "file '%s'\n", absPath)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
	return a.run(ctx, a.ffmpegPath, args...)
}

func (a *Assembler) runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", filepath.Base(name), err, string(output))
	}
	return nil
}

func parseResolution(resolution string) (int, int) {
	parts := strings.Split(resolution, "x")
	if len(parts) != 2 {
		return 1080, 1920
	}

	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 1080, 1920
	}

	return width, height
}
