package dto

// PlanInputRequest carries the text of the current wizard question.
type PlanInputRequest struct {
	Input string `json:"input"`
}
