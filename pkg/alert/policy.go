package alert

import (
	pkgerrors "github.com/pkg/errors"
)

// Policy holds the two alert thresholds. Use NewPolicy to build one.
type Policy struct {
	LowLevel  int `json:"lowLevel"`
	RiskLevel int `json:"riskLevel"`
}

// NewPolicy validates the thresholds. Errors wrap ErrInvalidPolicy.
func NewPolicy(low, risk int) (Policy, error) {
	p := Policy{LowLevel: low, RiskLevel: risk}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks that both levels are percentages and risk is below low.
func (p Policy) Validate() error {
	if p.LowLevel < 0 || p.LowLevel > 100 {
		return pkgerrors.Wrapf(ErrInvalidPolicy, "low level must be between 0 and 100, got %d", p.LowLevel)
	}
	if p.RiskLevel < 0 || p.RiskLevel > 100 {
		return pkgerrors.Wrapf(ErrInvalidPolicy, "risk level must be between 0 and 100, got %d", p.RiskLevel)
	}
	if p.RiskLevel >= p.LowLevel {
		return pkgerrors.Wrapf(ErrInvalidPolicy, "risk level (%d) must be lower than low level (%d)", p.RiskLevel, p.LowLevel)
	}
	return nil
}

// Low reports whether a known percentage is at or below the low level.
func (p Policy) Low(percentage int) bool {
	return percentage <= p.LowLevel
}

// Risky reports whether a known percentage is at or below the risk level.
func (p Policy) Risky(percentage int) bool {
	return percentage <= p.RiskLevel
}
