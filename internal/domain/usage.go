package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cost is the price of one request split by token category.
type Cost struct {
	PromptCost     decimal.Decimal `json:"promptCost"`
	CompletionCost decimal.Decimal `json:"completionCost"`
	TotalCost      decimal.Decimal `json:"totalCost"`
}

// Usage tracks approximate token usage and cost for a session.
type Usage struct {
	PromptTokens     int             `json:"promptTokens" yaml:"promptTokens"`
	CompletionTokens int             `json:"completionTokens" yaml:"completionTokens"`
	Cost             decimal.Decimal `json:"cost" yaml:"cost"`
	Turns            int             `json:"turns" yaml:"turns"`
}

func (u *Usage) Add(promptTokens, completionTokens int, cost Cost) {
	u.PromptTokens += promptTokens
	u.CompletionTokens += completionTokens
	u.Cost = u.Cost.Add(cost.TotalCost)
	u.Turns++
}

func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// FormatCost returns a human-readable dollar amount.
func FormatCost(cost decimal.Decimal) string {
	if cost.IsPositive() && cost.LessThan(decimal.NewFromFloat(0.0001)) {
		return "<$0.0001"
	}
	return "$" + cost.StringFixed(4)
}

// FormatTokens returns a human-readable token count.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}
