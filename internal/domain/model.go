package domain

type AIModel struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ContextLength   int     `json:"contextLength"`
	PromptPrice     float64 `json:"promptPrice"`     // per 1K tokens
	CompletionPrice float64 `json:"completionPrice"` // per 1K tokens
}
