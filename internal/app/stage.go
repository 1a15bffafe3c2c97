package app

import "fmt"

// Stage is one phase of the video creation workflow. A session is in
// exactly one stage at a time and only the orchestrator moves it.
type Stage string

const (
	StageTheme    Stage = "theme"
	StageResearch Stage = "research"
	StageScript   Stage = "script"
	StageAssets   Stage = "assets"
	StageAssembly Stage = "assembly"
	StageSEO      Stage = "seo"
	StageDone     Stage = "done"
	StageFailed   Stage = "failed"
)

var stageOrder = map[Stage]Stage{
	StageTheme:    StageResearch,
	StageResearch: StageScript,
	StageScript:   StageAssets,
	StageAssets:   StageAssembly,
	StageAssembly: StageSEO,
	StageSEO:      StageDone,
}

// nextStage returns the stage that follows s in the fixed order. Terminal
// stages have no successor.
func nextStage(s Stage) (Stage, error) {
	next, ok := stageOrder[s]
	if !ok {
		return "", fmt.Errorf("no stage follows %q", s)
	}
	return next, nil
}

func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StageTheme, StageResearch, StageScript, StageAssets, StageAssembly, StageSEO, StageDone, StageFailed:
		return Stage(raw), nil
	default:
		return "", fmt.Errorf("unknown stage: %q", raw)
	}
}
