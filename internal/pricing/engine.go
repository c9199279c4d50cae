// internal/pricing/engine.go
package pricing

import "github.com/shopspring/decimal"

var (
	minimumPrice = decimal.NewFromInt(MinimumPrice)
	roundingStep = decimal.NewFromInt(RoundingStep)
)

// Calculate prices a case. It is pure and total: unknown enum values
// degrade to the lowest base price, zero strategy points and a 1.0 multiplier.
func Calculate(input Input) Result {
	in := input.Normalize()

	b := Breakdown{
		Base:        basePrice(in.Category),
		Complexity:  bandPoints(ViolationBands, float64(in.ViolationsCount)),
		Strategy:    StrategyPoints[in.StrategyLevel],
		DocModifier: documentModifier(in.DocumentsCount, in.DocumentTypes),
		Stake:       bandPoints(StakeBands, in.AmountAtStake),
	}
	b.Subtotal = b.Base + b.Complexity + b.Strategy + b.DocModifier + b.Stake

	multiplier := urgencyMultiplier(in.Urgency)
	raw := decimal.NewFromInt(int64(b.Subtotal)).Mul(multiplier)
	b.UrgencyMultiplier = multiplier.InexactFloat64()
	b.RawPrice = raw.InexactFloat64()

	final := finalize(raw)
	return Result{
		FinalPrice: final,
		Tier:       TierFor(final),
		Breakdown:  b,
	}
}

// Recompute derives the final price from the breakdown components alone.
func (b Breakdown) Recompute() int {
	subtotal := b.Base + b.Complexity + b.Strategy + b.DocModifier + b.Stake
	raw := decimal.NewFromInt(int64(subtotal)).Mul(decimal.NewFromFloat(b.UrgencyMultiplier))
	return finalize(raw)
}

// TierFor classifies a final price.
func TierFor(price int) Tier {
	switch {
	case price >= ExtremeTierThreshold:
		return TierExtreme
	case price >= HighTierThreshold:
		return TierHigh
	default:
		return TierStandard
	}
}

func basePrice(c Category) int {
	if p, ok := BasePrices[c]; ok {
		return p
	}
	return DefaultBasePrice
}

func urgencyMultiplier(u Urgency) decimal.Decimal {
	if m, ok := UrgencyMultipliers[u]; ok {
		return m
	}
	return UrgencyMultipliers[UrgencyStandard]
}

func documentModifier(count int, types []string) int {
	mod := min(count*perDocumentIncrement, documentCountCap)
	for _, t := range types {
		mod += DocumentTypeBonuses[t]
	}
	return mod
}

// finalize floors the raw price, rounds half up to the nearest step and
// steps up again if rounding landed below the floor.
func finalize(raw decimal.Decimal) int {
	if raw.LessThan(minimumPrice) {
		raw = minimumPrice
	}
	rounded := raw.Div(roundingStep).Round(0).Mul(roundingStep).IntPart()
	for rounded < MinimumPrice {
		rounded += RoundingStep
	}
	return int(rounded)
}
