package service

import (
	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// EstimateCost prices a request from the static registry:
// tokens / 1000 * price per 1000, per category. Models outside the
// registry use the default price pair.
func EstimateCost(promptTokens, completionTokens int, model string) domain.Cost {
	promptPrice, completionPrice := config.DefaultPromptPricePer1K, config.DefaultCompletionPricePer1K
	if m, ok := config.LookupModel(model); ok {
		promptPrice, completionPrice = m.PromptPrice, m.CompletionPrice
	}

	promptCost := decimal.NewFromInt(int64(promptTokens)).Div(thousand).Mul(decimal.NewFromFloat(promptPrice))
	completionCost := decimal.NewFromInt(int64(completionTokens)).Div(thousand).Mul(decimal.NewFromFloat(completionPrice))

	return domain.Cost{
		PromptCost:     promptCost,
		CompletionCost: completionCost,
		TotalCost:      promptCost.Add(completionCost),
	}
}
