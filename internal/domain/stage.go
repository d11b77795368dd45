// Package domain contains the core domain models for the producer service.
package domain

// Stage represents a discrete, ordered phase of the content pipeline.
type Stage string

const (
	// StageInput indicates raw text has been submitted but not yet parsed.
	StageInput Stage = "input"
	// StageParsed indicates the parsing backend has produced structured data.
	StageParsed Stage = "parsed"
	// StageSummarized indicates the summarization backend has produced a summary.
	StageSummarized Stage = "summarized"
	// StageIllustrated indicates an image has been generated for the summary.
	StageIllustrated Stage = "illustrated"
	// StageApproved indicates the item has been human-approved; terminal.
	StageApproved Stage = "approved"
)

// stageOrder maps every recognised Stage to its position in the pipeline.
var stageOrder = map[Stage]int{
	StageInput:       0,
	StageParsed:      1,
	StageSummarized:  2,
	StageIllustrated: 3,
	StageApproved:    4,
}

// stageCount is the number of valid pipeline stages (used for pre-allocation).
const stageCount = 5

// AllStages returns all valid pipeline stages in order.
func AllStages() []Stage {
	stages := make([]Stage, 0, stageCount)
	stages = append(stages, StageInput, StageParsed, StageSummarized, StageIllustrated, StageApproved)
	return stages
}

// IsValid reports whether s is a recognised pipeline stage.
func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Previous returns the stage immediately before s, or s itself if s is the
// first stage or unrecognised.
func (s Stage) Previous() Stage {
	pos, ok := stageOrder[s]
	if !ok || pos == 0 {
		return s
	}
	return AllStages()[pos-1]
}
