package models

import (
	"encoding/json"
	"fmt"
)

// DatasetRecord is one (capture, question) prompt with its reference answer.
type DatasetRecord struct {
	Context string `json:"context"`
	Prompt  string `json:"prompt"`
	Answer  string `json:"answer"`
}

// GeneratedRecord is the evaluated model's answer to a DatasetRecord prompt.
type GeneratedRecord struct {
	Prompt          string `json:"prompt"`
	GeneratedOutput string `json:"generated_output"`
}

// Verdict is the evaluator's correctness decision.
type Verdict string

const (
	VerdictYes Verdict = "Yes"
	VerdictNo  Verdict = "No"
)

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Verdict(s) {
	case VerdictYes, VerdictNo:
		*v = Verdict(s)
		return nil
	}
	return fmt.Errorf("invalid verdict %q", s)
}

// Evaluation is the structured evaluator reply.
// Note is only present on records forced by the evaluation retry bound.
type Evaluation struct {
	IsCorrect   Verdict `json:"is_correct"`
	Punctuation int     `json:"punctuation"`
	Note        *string `json:"note,omitempty"`
}

// Degraded reports whether the evaluation carries a note.
func (e Evaluation) Degraded() bool {
	return e.Note != nil
}

// EvaluationRecord pairs the evaluator input with its parsed evaluation.
type EvaluationRecord struct {
	Prompt     string     `json:"prompt"`
	Evaluation Evaluation `json:"evaluation"`
}

// GenerateRequest is one completion request to the generative backend.
// Requests are always deterministic (temperature 0, no streaming).
type GenerateRequest struct {
	Model  string
	System string
	Prompt string
}
