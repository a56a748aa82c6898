package models

import (
	"time"
)

type EvaluationStatus string

const (
	EvaluationStatusQueued  EvaluationStatus = "QUEUED"
	EvaluationStatusRunning EvaluationStatus = "RUNNING"
	EvaluationStatusDone    EvaluationStatus = "DONE"
	EvaluationStatusError   EvaluationStatus = "ERROR"
)

// Weights expresses the relative importance of each scoring dimension.
// Weights are non-negative and need not sum to 100.
type Weights struct {
	Clarity     float64 `json:"clarity"`
	Specificity float64 `json:"specificity"`
	Safety      float64 `json:"safety"`
}

// ModelResult is the rubric score of one model. All fields are in [0,100].
type ModelResult struct {
	Model       string `json:"model"`
	Clarity     int    `json:"clarity"`
	Specificity int    `json:"specificity"`
	Safety      int    `json:"safety"`
	Overall     int    `json:"overall"`
}

// Evaluation scores one prompt across several models. Results is nil until
// the scoring action completes; it is then set exactly once, atomically with
// the flip to DONE, one entry per model in the same order as Models.
type Evaluation struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Prompt       string           `json:"prompt"`
	Models       []string         `json:"models"`
	Weights      Weights          `json:"weights"`
	Status       EvaluationStatus `json:"status"`
	Results      []ModelResult    `json:"results,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}
