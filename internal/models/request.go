package models

type CreateMigrationRequest struct {
	Name        string   `json:"name"`
	SourceModel string   `json:"sourceModel"`
	TargetModel string   `json:"targetModel"`
	Notes       string   `json:"notes"`
	Prompts     []string `json:"prompts"`
}

type CreateEvaluationRequest struct {
	Name    string   `json:"name"`
	Prompt  string   `json:"prompt"`
	Models  []string `json:"models"`
	Weights *Weights `json:"weights"`
}

type MigrationListResponse struct {
	Migrations []Migration `json:"migrations"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

type EvaluationListResponse struct {
	Evaluations []Evaluation `json:"evaluations"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
}

type SimilarPrompt struct {
	MigrationID string  `json:"migrationId"`
	PromptID    string  `json:"promptId"`
	Text        string  `json:"text"`
	Score       float32 `json:"score"`
}
