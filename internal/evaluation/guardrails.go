package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality an evaluation run must reach
type GuardrailConfig struct {
	MinRecall        float64
	MinMRR           float64
	MaxFailedQueries int
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxFailedQueries < 0 {
		config.MaxFailedQueries = 0
	}
	return &Guardrails{config: config}
}

// Check returns one message per violated threshold; empty means the run passes
func (g *Guardrails) Check(s *EvalSummary) []string {
	var violations []string
	if s.AvgRecall < g.config.MinRecall {
		violations = append(violations, fmt.Sprintf("recall@%d %.3f below %.3f", s.K, s.AvgRecall, g.config.MinRecall))
	}
	if s.AvgMRR < g.config.MinMRR {
		violations = append(violations, fmt.Sprintf("mrr@%d %.3f below %.3f", s.K, s.AvgMRR, g.config.MinMRR))
	}
	if s.FailedQueries > g.config.MaxFailedQueries {
		violations = append(violations, fmt.Sprintf("%d queries failed (max %d)", s.FailedQueries, g.config.MaxFailedQueries))
	}
	return violations
}
