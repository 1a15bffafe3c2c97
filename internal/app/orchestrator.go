package app

import (
	"context"
	"fmt"
	"sync"

	"reelforge/internal/scenes"
	"reelforge/internal/video"
)

// Orchestrator runs the approval gated workflow. Each user message is
// handled as one turn: drafting stages may suspend the session at an
// approval gate, production stages run to completion within the turn.
// Turns for the same session are serialized; a second message arriving
// mid-turn waits and then sees the updated stage.
type Orchestrator struct {
	svc   *Service
	locks sync.Map // session ID -> *sync.Mutex
}

func NewOrchestrator(svc *Service) *Orchestrator {
	return &Orchestrator{svc: svc}
}

// Start creates a new session and returns the opening prompt.
func (o *Orchestrator) Start(ctx context.Context) (*Session, string, error) {
	s := NewSession()
	reply := "Tell me what your short video should be about."
	s.AddAssistant(reply)
	if err := o.svc.Sessions.Save(s); err != nil {
		return nil, "", err
	}
	o.svc.logger().Info("session started", "session", s.ID)
	return s, reply, nil
}

// HandleMessage processes one user turn. A returned error means the
// workflow hit a fatal condition: the session is already marked failed
// and saved, and the error text is what the user should see.
func (o *Orchestrator) HandleMessage(ctx context.Context, id, text string) (*Session, string, error) {
	mu := o.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	s, err := o.svc.Sessions.Load(id)
	if err != nil {
		return nil, "", err
	}
	s.AddUser(text)

	reply, err := o.handle(ctx, s, text)
	if err != nil {
		s.Fail(err)
		if saveErr := o.svc.Sessions.Save(s); saveErr != nil {
			o.svc.logger().Error("save failed session", "session", s.ID, "error", saveErr)
		}
		o.svc.logger().Error("workflow failed", "session", s.ID, "stage", s.Stage, "error", err)
		return s, "", err
	}

	s.AddAssistant(reply)
	if err := o.svc.Sessions.Save(s); err != nil {
		return nil, "", err
	}
	return s, reply, nil
}

// sessionLock returns the mutex serializing turns for one session.
func (o *Orchestrator) sessionLock(id string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (o *Orchestrator) handle(ctx context.Context, s *Session, text string) (string, error) {
	switch s.Stage {
	case StageDone:
		return fmt.Sprintf("This video is finished: %s. Start a new session for another one.", s.FinalVideoPath), nil
	case StageFailed:
		return fmt.Sprintf("This session failed (%s). Start a new session to try again.", s.FailureReason), nil
	case StageTheme:
		return o.handleTheme(ctx, s, text)
	case StageScript:
		return o.handleScript(ctx, s, text)
	case StageResearch:
		// Only reachable after a crash mid-turn: the theme is approved,
		// so pick the run back up from research.
		return o.runResearchAndDraft(ctx, s)
	case StageAssets, StageAssembly, StageSEO:
		// Same story for the production stages.
		return o.runProduction(ctx, s)
	default:
		return "", fmt.Errorf("session %s is in unknown stage %q", s.ID, s.Stage)
	}
}

func (o *Orchestrator) handleTheme(ctx context.Context, s *Session, text string) (string, error) {
	if !s.AwaitingApproval {
		theme, err := o.svc.LLM.ProposeTheme(ctx, text)
		if err != nil {
			return "", fmt.Errorf("propose theme: %w", err)
		}
		s.Theme = theme
		s.AwaitingApproval = true
		return themeProposal(theme), nil
	}

	d := classifyReply(text)
	if !d.Approved {
		revised, err := o.svc.LLM.ReviseTheme(ctx, s.Theme, d.Feedback)
		if err != nil {
			return "", fmt.Errorf("revise theme: %w", err)
		}
		s.Theme = revised
		return themeProposal(revised), nil
	}

	s.AwaitingApproval = false
	if err := s.advance(); err != nil {
		return "", err
	}
	o.svc.logger().Info("theme approved", "session", s.ID, "theme", s.Theme.Theme)
	return o.runResearchAndDraft(ctx, s)
}

// runResearchAndDraft covers the span from an approved theme to the
// script approval gate. It never suspends partway.
func (o *Orchestrator) runResearchAndDraft(ctx context.Context, s *Session) (string, error) {
	s.Stage = StageResearch
	if err := o.svc.Sessions.Save(s); err != nil {
		return "", err
	}

	expert, err := o.svc.LLM.ExpertResearch(ctx, s.Theme)
	if err != nil {
		return "", fmt.Errorf("expert research: %w", err)
	}
	web, err := o.svc.LLM.WebResearch(ctx, s.Theme)
	if err != nil {
		return "", fmt.Errorf("web research: %w", err)
	}
	compiled, err := o.svc.LLM.CompileResearch(ctx, s.Theme, expert, web)
	if err != nil {
		return "", fmt.Errorf("compile research: %w", err)
	}
	s.Research = compiled

	s.Stage = StageScript
	draft, err := o.svc.LLM.DraftScript(ctx, s.Theme, s.Research)
	if err != nil {
		return "", fmt.Errorf("draft script: %w", err)
	}
	s.Script = draft
	s.AwaitingApproval = true
	return scriptProposal(draft), nil
}

func (o *Orchestrator) handleScript(ctx context.Context, s *Session, text string) (string, error) {
	if !s.AwaitingApproval {
		// Crash before the draft was saved: regenerate it.
		return o.runResearchAndDraft(ctx, s)
	}

	d := classifyReply(text)
	if !d.Approved {
		revised, err := o.svc.LLM.ReviseScript(ctx, s.Theme, s.Script, d.Feedback)
		if err != nil {
			return "", fmt.Errorf("revise script: %w", err)
		}
		s.Script = revised
		return scriptProposal(revised), nil
	}

	s.AwaitingApproval = false
	if err := s.advance(); err != nil {
		return "", err
	}
	o.svc.logger().Info("script approved", "session", s.ID)
	return o.runProduction(ctx, s)
}

// runProduction covers scene breakdown, asset fan-out, assembly and SEO.
// Individual scene failures are tolerated per the assembly policy;
// everything else is fatal.
func (o *Orchestrator) runProduction(ctx context.Context, s *Session) (string, error) {
	s.Stage = StageAssets
	if len(s.Scenes) == 0 {
		narrations, err := o.svc.LLM.BreakdownScenes(ctx, s.Script)
		if err != nil {
			return "", fmt.Errorf("scene breakdown: %w", err)
		}
		if len(narrations) == 0 {
			return "", fmt.Errorf("scene breakdown produced no scenes")
		}
		s.Scenes = scenes.FromNarrations(narrations)
	}
	if err := o.svc.Sessions.Save(s); err != nil {
		return "", err
	}

	project := o.svc.Sessions.Project(s.ID)
	result, summary := o.svc.Coordinator.Run(ctx, s.Theme.Theme, s.Scenes, scenes.Dirs{
		Voiceovers: project.VoiceoverDir(),
		Images:     project.ImageDir(),
		Videos:     project.VideoDir(),
	})
	s.Scenes = result
	if err := o.svc.Sessions.Save(s); err != nil {
		return "", err
	}
	o.svc.logger().Info("scene fan-out finished", "session", s.ID, "summary", summary.String())

	s.Stage = StageAssembly
	plan, err := video.BuildPlan(result, o.svc.Policy)
	if err != nil {
		return "", fmt.Errorf("plan assembly: %w", err)
	}
	assembled, err := o.svc.Assembler.Assemble(ctx, plan, project.AssemblyDir(), project.FinalVideoPath())
	if err != nil {
		return "", fmt.Errorf("assemble video: %w", err)
	}
	s.FinalVideoPath = assembled.OutputPath

	s.Stage = StageSEO
	meta, err := o.svc.LLM.OptimizeSEO(ctx, s.Script)
	if err != nil {
		return "", fmt.Errorf("optimize seo: %w", err)
	}
	s.Metadata = meta
	if err := project.WriteJSON(project.MetadataPath(), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	s.Stage = StageDone
	if err := o.svc.Sessions.Save(s); err != nil {
		return "", err
	}

	if o.svc.Archiver != nil {
		if err := o.svc.Archiver.Archive(ctx, project, s.ID); err != nil {
			o.svc.logger().Warn("archive project", "session", s.ID, "error", err)
		}
	}

	return productionReport(s, summary, assembled.Warnings), nil
}
