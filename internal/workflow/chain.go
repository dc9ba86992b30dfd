// Package workflow holds the approval chain configuration, the access
// policy and the decision engine. It is pure domain logic: no database,
// no transport.
package workflow

import (
	"backend/internal/model"
	"backend/pkg/apperror"
)

// StageRole identifies the approver role bound to one chain stage.
type StageRole string

const (
	StageDivisionHead StageRole = "division_head"
	StageHRDHead      StageRole = "hrd_head"
	StageFinanceHead  StageRole = "finance_head"
	StageAdmin        StageRole = "admin"
)

// Kind identifies a request kind.
type Kind string

const (
	KindInCityTravel    Kind = "in_city_travel"
	KindOutOfCityTravel Kind = "out_of_city_travel"
	KindPersonal        Kind = "personal"
	KindLeave           Kind = "leave"
)

// Chain is the ordered list of stages a request kind must pass.
type Chain []StageRole

var chains = map[Kind]Chain{
	KindInCityTravel:    {StageDivisionHead, StageAdmin},
	KindOutOfCityTravel: {StageDivisionHead, StageHRDHead, StageFinanceHead, StageAdmin},
	KindPersonal:        {StageDivisionHead, StageAdmin},
	KindLeave:           {StageDivisionHead, StageHRDHead},
}

// ChainFor returns the approval chain configured for the given kind.
func ChainFor(kind Kind) (Chain, bool) {
	c, ok := chains[kind]
	return c, ok
}

// NewEnvelope builds the initial approval envelope for a kind: first stage
// pending, the rest not reached, overall status pending.
func NewEnvelope(kind Kind) (model.ApprovalEnvelope, error) {
	chain, ok := ChainFor(kind)
	if !ok {
		return model.ApprovalEnvelope{}, apperror.InvalidState("no approval chain configured for kind %q", kind)
	}

	results := make(model.StageResults, len(chain))
	for i, stage := range chain {
		status := model.StageNotReached
		if i == 0 {
			status = model.StagePending
		}
		results[i] = model.StageResult{Stage: string(stage), Status: status}
	}

	return model.ApprovalEnvelope{
		StageResults:  results,
		OverallStatus: model.StatusPending,
	}, nil
}
