package llm

// Pricing is the USD cost per 1K tokens for one model.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// PricingTable maps model identifiers to their token pricing.
type PricingTable map[string]Pricing

// DefaultPricing covers the model tiers the adapter is normally configured
// with. Unknown models cost zero rather than guessing.
func DefaultPricing() PricingTable {
	return PricingTable{
		"claude-sonnet-4-20250514":  {InputPer1K: 0.003, OutputPer1K: 0.015},
		"claude-haiku-4-5-20251001": {InputPer1K: 0.001, OutputPer1K: 0.005},
		"claude-opus-4-20250514":    {InputPer1K: 0.015, OutputPer1K: 0.075},
	}
}

// Cost returns the USD cost of a call for the given model and token counts.
func (t PricingTable) Cost(model string, inputTokens, outputTokens int) float64 {
	p, ok := t[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)*p.InputPer1K/1000 + float64(outputTokens)*p.OutputPer1K/1000
}
