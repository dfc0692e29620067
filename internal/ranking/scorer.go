package ranking

// Domain is the closed integer range an attribute may take.
type Domain struct {
	Lo int
	Hi int
}

// Attribute domains. Validation enforces them and scoring interpolates over them.
var (
	DayDomain   = Domain{Lo: 1, Hi: 15}
	PriceDomain = Domain{Lo: 100, Hi: 250}
	RankDomain  = Domain{Lo: 1, Hi: 2}
)

// Normalize maps v linearly from the domain onto [-5, 5].
func (d Domain) Normalize(v int) float64 {
	return (10.0/float64(d.Hi-d.Lo))*float64(v-d.Lo) - 5.0
}

// FactorResult captures one attribute's contribution to a composite score.
type FactorResult struct {
	Name     string  `json:"name"`
	Value    int     `json:"value"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoringResult is the composite score of one record with its breakdown.
type ScoringResult struct {
	TotalScore float64        `json:"total_score"`
	Factors    []FactorResult `json:"factors"`
}

// Score computes the composite score of a record under normalized weights.
//
//	score = (norm(d)+5)*dN + (norm(p)+5)*pN + (norm(r)+5)*rN
//
// where norm maps each attribute from its domain onto [-5, 5].
func Score(rec Record, w NormalizedWeightSet) ScoringResult {
	factors := []FactorResult{
		factor("d", rec.Day, DayDomain, w.Day),
		factor("p", rec.Price, PriceDomain, w.Price),
		factor("r", rec.Rank, RankDomain, w.Rank),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}
	return ScoringResult{TotalScore: total, Factors: factors}
}

func factor(name string, v int, d Domain, weight float64) FactorResult {
	// shift [-5, 5] to [0, 10] so a zero weight always contributes nothing
	score := d.Normalize(v) + 5.0
	return FactorResult{
		Name:     name,
		Value:    v,
		Score:    score,
		Weight:   weight,
		Weighted: score * weight,
	}
}
