package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reelforge/internal/llm"
	"reelforge/internal/media"
	"reelforge/internal/scenes"
	"reelforge/internal/storage"
	"reelforge/internal/video"
	"reelforge/pkg/config"
)

// fakeLLM returns canned text for every drafting call and counts the
// revision calls so tests can assert on the approval loops.
type fakeLLM struct {
	themeRevisions  atomic.Int32
	scriptRevisions atomic.Int32
	breakdown       []string
	breakdownErr    error
	seoErr          error
}

func (f *fakeLLM) ProposeTheme(_ context.Context, request string) (*llm.Theme, error) {
	return &llm.Theme{Theme: "Theme for: " + request, Intent: "educate"}, nil
}

func (f *fakeLLM) ReviseTheme(_ context.Context, previous *llm.Theme, feedback string) (*llm.Theme, error) {
	f.themeRevisions.Add(1)
	return &llm.Theme{Theme: previous.Theme + " / " + feedback, Intent: previous.Intent}, nil
}

func (f *fakeLLM) ExpertResearch(_ context.Context, theme *llm.Theme) (string, error) {
	return "expert notes on " + theme.Theme, nil
}

func (f *fakeLLM) WebResearch(_ context.Context, theme *llm.Theme) (string, error) {
	return "web notes on " + theme.Theme, nil
}

func (f *fakeLLM) CompileResearch(_ context.Context, _ *llm.Theme, expert, web string) (string, error) {
	return expert + "\n" + web, nil
}

func (f *fakeLLM) DraftScript(_ context.Context, theme *llm.Theme, _ string) (string, error) {
	return "Narration about " + theme.Theme, nil
}

func (f *fakeLLM) ReviseScript(_ context.Context, _ *llm.Theme, script, feedback string) (string, error) {
	f.scriptRevisions.Add(1)
	return script + " [" + feedback + "]", nil
}

func (f *fakeLLM) BreakdownScenes(_ context.Context, _ string) ([]string, error) {
	if f.breakdownErr != nil {
		return nil, f.breakdownErr
	}
	return f.breakdown, nil
}

func (f *fakeLLM) ImagePrompt(_ context.Context, _, narration string) (string, error) {
	return "image: " + narration, nil
}

func (f *fakeLLM) VideoPrompt(_ context.Context, _, narration string) (string, error) {
	return "video: " + narration, nil
}

func (f *fakeLLM) OptimizeSEO(_ context.Context, _ string) (*llm.Metadata, error) {
	if f.seoErr != nil {
		return nil, f.seoErr
	}
	return &llm.Metadata{Title: "Great Short", Description: "A short video.", Tags: []string{"shorts"}}, nil
}

// failingGenerator fails video generation for the named scenes and
// delegates everything else to the stub.
type failingGenerator struct {
	inner    media.Generator
	failVids map[string]bool
}

func (g *failingGenerator) Generate(ctx context.Context, req media.Request) error {
	if req.Kind == media.KindVideo {
		for name := range g.failVids {
			if strings.Contains(req.OutputPath, name) {
				return fmt.Errorf("video backend rejected %s", name)
			}
		}
	}
	return g.inner.Generate(ctx, req)
}

func newTestService(t *testing.T, text llm.Client, gen media.Generator, policy video.Policy) *Service {
	t.Helper()
	if gen == nil {
		gen = media.NewStubGenerator()
	}
	cfg := &config.Config{}
	cfg.Projects.Dir = t.TempDir()
	store := NewSessionStore(storage.NewStore(cfg.Projects.Dir))
	return &Service{
		Config:    cfg,
		LLM:       text,
		Generator: gen,
		Coordinator: scenes.NewCoordinator(text, gen, scenes.Options{
			MaxInFlight:  2,
			SceneTimeout: 5 * time.Second,
		}),
		Assembler: video.NewAssembler(video.AssemblerOptions{
			Resolution: "1080x1920",
			FPS:        24,
			Run: func(context.Context, string, ...string) error {
				return nil
			},
		}),
		Sessions: store,
		Policy:   policy,
	}
}

func TestStageOrderIsFixed(t *testing.T) {
	want := []Stage{StageTheme, StageResearch, StageScript, StageAssets, StageAssembly, StageSEO, StageDone}
	for i := 0; i < len(want)-1; i++ {
		got, err := nextStage(want[i])
		if err != nil {
			t.Fatalf("nextStage(%s): %v", want[i], err)
		}
		if got != want[i+1] {
			t.Fatalf("nextStage(%s) = %s, want %s", want[i], got, want[i+1])
		}
	}
	for _, terminal := range []Stage{StageDone, StageFailed} {
		if _, err := nextStage(terminal); err == nil {
			t.Fatalf("nextStage(%s) should fail", terminal)
		}
		if !terminal.Terminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
	}
	if StageTheme.Terminal() {
		t.Fatal("theme is not terminal")
	}
}

func TestParseStage(t *testing.T) {
	if _, err := ParseStage("assembly"); err != nil {
		t.Fatalf("parse assembly: %v", err)
	}
	if _, err := ParseStage("rendering"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestClassifyReply(t *testing.T) {
	tests := []struct {
		reply    string
		approved bool
		feedback string
	}{
		{"yes", true, ""},
		{"Yes!", true, ""},
		{"  OK  ", true, ""},
		{"okay.", true, ""},
		{"LGTM", true, ""},
		{"Looks  good", true, ""},
		{"sure", true, ""},
		{"y", true, ""},
		{"no", false, "no"},
		{"yes please", false, "yes please"},
		{"maybe", false, "maybe"},
		{"make it about cats", false, "make it about cats"},
		{"", false, ""},
	}
	for _, tt := range tests {
		got := classifyReply(tt.reply)
		if got.Approved != tt.approved {
			t.Errorf("classifyReply(%q).Approved = %v, want %v", tt.reply, got.Approved, tt.approved)
		}
		if got.Feedback != tt.feedback {
			t.Errorf("classifyReply(%q).Feedback = %q, want %q", tt.reply, got.Feedback, tt.feedback)
		}
	}
}

func TestWorkflowReviseThenApprove(t *testing.T) {
	text := &fakeLLM{breakdown: []string{
		"The pyramids rise from the desert.",
		"Workers haul stone under the sun.",
		"The pharaoh inspects the site.",
	}}
	svc := newTestService(t, text, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	s, _, err := orch.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s, reply, err := orch.HandleMessage(ctx, s.ID, "a short about ancient egypt")
	if err != nil {
		t.Fatalf("theme turn: %v", err)
	}
	if s.Stage != StageTheme || !s.AwaitingApproval {
		t.Fatalf("after request: stage=%s awaiting=%v", s.Stage, s.AwaitingApproval)
	}
	if !strings.Contains(reply, "ancient egypt") {
		t.Fatalf("theme proposal missing request: %q", reply)
	}

	s, _, err = orch.HandleMessage(ctx, s.ID, "focus on the pyramids")
	if err != nil {
		t.Fatalf("revise turn: %v", err)
	}
	if got := text.themeRevisions.Load(); got != 1 {
		t.Fatalf("theme revisions = %d, want 1", got)
	}
	if s.Stage != StageTheme || !s.AwaitingApproval {
		t.Fatalf("after revision: stage=%s awaiting=%v", s.Stage, s.AwaitingApproval)
	}
	if !strings.Contains(s.Theme.Theme, "focus on the pyramids") {
		t.Fatalf("feedback not threaded into revision: %q", s.Theme.Theme)
	}

	s, reply, err = orch.HandleMessage(ctx, s.ID, "yes")
	if err != nil {
		t.Fatalf("approve theme: %v", err)
	}
	if s.Stage != StageScript || !s.AwaitingApproval {
		t.Fatalf("after theme approval: stage=%s awaiting=%v", s.Stage, s.AwaitingApproval)
	}
	if s.Research == "" || s.Script == "" {
		t.Fatal("research and draft should both exist after theme approval")
	}
	if !strings.Contains(reply, "script draft") {
		t.Fatalf("expected script proposal, got %q", reply)
	}

	s, _, err = orch.HandleMessage(ctx, s.ID, "punchier opening")
	if err != nil {
		t.Fatalf("revise script: %v", err)
	}
	if got := text.scriptRevisions.Load(); got != 1 {
		t.Fatalf("script revisions = %d, want 1", got)
	}

	s, reply, err = orch.HandleMessage(ctx, s.ID, "ok")
	if err != nil {
		t.Fatalf("approve script: %v", err)
	}
	if s.Stage != StageDone {
		t.Fatalf("stage = %s, want done", s.Stage)
	}
	if s.FinalVideoPath == "" {
		t.Fatal("final video path not recorded")
	}
	if len(s.Scenes) != 3 {
		t.Fatalf("scene count = %d, want 3", len(s.Scenes))
	}
	for _, sc := range s.Scenes {
		if sc.Status != scenes.StatusReady {
			t.Fatalf("scene %d status = %s, want ready", sc.Index, sc.Status)
		}
	}
	if s.Metadata == nil || s.Metadata.Title != "Great Short" {
		t.Fatalf("metadata = %+v", s.Metadata)
	}
	if !strings.Contains(reply, "Your video is ready") {
		t.Fatalf("final reply: %q", reply)
	}

	// The session must be resumable from disk alone.
	reloaded, err := svc.Sessions.Load(s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stage != StageDone || reloaded.Script != s.Script {
		t.Fatalf("reloaded session diverges: %+v", reloaded)
	}
	project := svc.Sessions.Project(s.ID)
	if _, err := os.Stat(project.MetadataPath()); err != nil {
		t.Fatalf("metadata.json missing: %v", err)
	}
}

func TestSceneFailureWithSkipPolicy(t *testing.T) {
	text := &fakeLLM{breakdown: []string{"one", "two", "three", "four", "five"}}
	gen := &failingGenerator{inner: media.NewStubGenerator(), failVids: map[string]bool{"scene_003": true}}
	svc := newTestService(t, text, gen, video.PolicySkipFailed)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	s := runToScriptGate(t, orch, ctx)
	s, reply, err := orch.HandleMessage(ctx, s.ID, "approved")
	if err != nil {
		t.Fatalf("production: %v", err)
	}
	if s.Stage != StageDone {
		t.Fatalf("stage = %s, want done", s.Stage)
	}
	if s.Scenes[3].Status != scenes.StatusFailed {
		t.Fatalf("scene 3 status = %s, want failed", s.Scenes[3].Status)
	}
	if !strings.Contains(reply, "skipping scene 3") {
		t.Fatalf("report should mention skipped scene: %q", reply)
	}
}

func TestSceneFailureWithStrictPolicy(t *testing.T) {
	text := &fakeLLM{breakdown: []string{"one", "two", "three", "four", "five"}}
	gen := &failingGenerator{inner: media.NewStubGenerator(), failVids: map[string]bool{"scene_003": true}}
	svc := newTestService(t, text, gen, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	s := runToScriptGate(t, orch, ctx)
	s, _, err := orch.HandleMessage(ctx, s.ID, "yes")
	if err == nil {
		t.Fatal("strict policy should abort on a failed scene")
	}
	if !strings.Contains(err.Error(), "missing scene 3") {
		t.Fatalf("error = %v, want missing scene 3", err)
	}
	if s.Stage != StageFailed {
		t.Fatalf("stage = %s, want failed", s.Stage)
	}

	reloaded, loadErr := svc.Sessions.Load(s.ID)
	if loadErr != nil {
		t.Fatalf("reload: %v", loadErr)
	}
	if reloaded.Stage != StageFailed || !strings.Contains(reloaded.FailureReason, "missing scene 3") {
		t.Fatalf("failure not persisted: stage=%s reason=%q", reloaded.Stage, reloaded.FailureReason)
	}
}

func TestBreakdownErrorFailsSession(t *testing.T) {
	text := &fakeLLM{breakdownErr: fmt.Errorf("model unavailable")}
	svc := newTestService(t, text, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	s := runToScriptGate(t, orch, ctx)
	s, _, err := orch.HandleMessage(ctx, s.ID, "yes")
	if err == nil {
		t.Fatal("expected breakdown failure")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("cause not surfaced verbatim: %v", err)
	}
	if s.Stage != StageFailed || !strings.Contains(s.FailureReason, "model unavailable") {
		t.Fatalf("stage=%s reason=%q", s.Stage, s.FailureReason)
	}
}

func TestTerminalSessionsAnswerWithoutWork(t *testing.T) {
	text := &fakeLLM{breakdown: []string{"one"}}
	svc := newTestService(t, text, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	done := NewSession()
	done.Stage = StageDone
	done.FinalVideoPath = "/tmp/out.mp4"
	if err := svc.Sessions.Save(done); err != nil {
		t.Fatal(err)
	}
	_, reply, err := orch.HandleMessage(ctx, done.ID, "yes")
	if err != nil {
		t.Fatalf("done session: %v", err)
	}
	if !strings.Contains(reply, "finished") {
		t.Fatalf("reply = %q", reply)
	}

	failed := NewSession()
	failed.Fail(fmt.Errorf("something broke"))
	if err := svc.Sessions.Save(failed); err != nil {
		t.Fatal(err)
	}
	_, reply, err = orch.HandleMessage(ctx, failed.ID, "yes")
	if err != nil {
		t.Fatalf("failed session: %v", err)
	}
	if !strings.Contains(reply, "something broke") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestResumeMidProduction(t *testing.T) {
	text := &fakeLLM{breakdown: []string{"one", "two"}}
	svc := newTestService(t, text, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	// A session that crashed after the breakdown was persisted.
	s := NewSession()
	s.Theme = &llm.Theme{Theme: "volcanoes", Intent: "educate"}
	s.Script = "Narration about volcanoes"
	s.Research = "notes"
	s.Stage = StageAssets
	s.Scenes = scenes.FromNarrations([]string{"one", "two"})
	if err := svc.Sessions.Save(s); err != nil {
		t.Fatal(err)
	}

	resumed, _, err := orch.HandleMessage(ctx, s.ID, "continue")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Stage != StageDone {
		t.Fatalf("stage = %s, want done", resumed.Stage)
	}
}

// slowResearchLLM stretches the research stage so a second turn can
// arrive while the first is still running.
type slowResearchLLM struct {
	fakeLLM
	researchCalls atomic.Int32
	delay         time.Duration
}

func (f *slowResearchLLM) ExpertResearch(ctx context.Context, theme *llm.Theme) (string, error) {
	f.researchCalls.Add(1)
	time.Sleep(f.delay)
	return f.fakeLLM.ExpertResearch(ctx, theme)
}

func TestConcurrentTurnsAreSerialized(t *testing.T) {
	text := &slowResearchLLM{
		fakeLLM: fakeLLM{breakdown: []string{"one", "two"}},
		delay:   50 * time.Millisecond,
	}
	svc := newTestService(t, text, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	ctx := context.Background()

	s, _, err := orch.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s, _, err = orch.HandleMessage(ctx, s.ID, "a short video")
	if err != nil {
		t.Fatalf("theme turn: %v", err)
	}

	// Two replies race to the same theme approval gate. One must consume
	// the gate and run research; the other must wait its turn and land on
	// whatever stage the first left behind.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := orch.HandleMessage(ctx, s.ID, "yes"); err != nil {
				t.Errorf("concurrent turn: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := text.researchCalls.Load(); got != 1 {
		t.Fatalf("research ran %d times, want 1", got)
	}

	// First "yes" approved the theme, the second approved the script.
	reloaded, err := svc.Sessions.Load(s.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stage != StageDone {
		t.Fatalf("stage = %s, want done", reloaded.Stage)
	}
}

func TestUnknownSession(t *testing.T) {
	svc := newTestService(t, &fakeLLM{}, nil, video.PolicyStrict)
	orch := NewOrchestrator(svc)
	if _, _, err := orch.HandleMessage(context.Background(), "nope", "hi"); err == nil {
		t.Fatal("expected not-found error")
	}
}

// runToScriptGate walks a fresh session to the script approval gate.
func runToScriptGate(t *testing.T, orch *Orchestrator, ctx context.Context) *Session {
	t.Helper()
	s, _, err := orch.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s, _, err = orch.HandleMessage(ctx, s.ID, "a short video")
	if err != nil {
		t.Fatalf("theme turn: %v", err)
	}
	s, _, err = orch.HandleMessage(ctx, s.ID, "yes")
	if err != nil {
		t.Fatalf("approve theme: %v", err)
	}
	if s.Stage != StageScript || !s.AwaitingApproval {
		t.Fatalf("not at script gate: stage=%s awaiting=%v", s.Stage, s.AwaitingApproval)
	}
	return s
}
