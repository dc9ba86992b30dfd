package workflow

import (
	"strings"

	"backend/internal/model"
	"backend/pkg/apperror"
)

// Decision is an approver's verdict on the current stage.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Subject carries the request facts the engine needs to authorize and
// apply a decision.
type Subject struct {
	Kind          Kind
	RequesterName string
	Division      string
}

// Decide applies one approval decision to the envelope in place.
//
// The current stage is the first pending entry. Rejection is absorbing:
// subsequent stages stay not reached. Approving the last stage finalizes
// the request. When the HRD & GA head approves the division-head stage of
// a request from their own division, the hrd_head stage is approved in the
// same call.
//
// Callers must hold the request row exclusively for the duration of the
// call and persist the envelope before releasing it.
func Decide(env *model.ApprovalEnvelope, sub Subject, actor *model.User, decision Decision) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return apperror.InvalidInput("unknown decision %q", decision)
	}

	chain, ok := ChainFor(sub.Kind)
	if !ok {
		return apperror.InvalidState("no approval chain configured for kind %q", sub.Kind)
	}
	if len(env.StageResults) != len(chain) {
		return apperror.InvalidState("approval chain for %s request is malformed", sub.Kind)
	}

	idx := currentStage(env)
	if idx < 0 {
		return apperror.InvalidState("request is already %s", env.OverallStatus)
	}

	if !CanActOn(actor, chain[idx], sub.Division) {
		// An approver whose stage has already been decided lost a race or
		// is retrying; distinguish that from plain lack of authority.
		if decidedEarlierStage(env, chain, actor, sub.Division, idx) {
			return apperror.Conflict("the stage you are responsible for has already been decided")
		}
		return apperror.Forbidden("not authorized to decide stage %s", chain[idx])
	}

	if strings.EqualFold(strings.TrimSpace(actor.Name), strings.TrimSpace(sub.RequesterName)) {
		return apperror.Forbidden("cannot approve your own request")
	}

	if decision == DecisionReject {
		env.StageResults[idx].Status = model.StageRejected
		env.OverallStatus = model.StatusRejected
		env.ApprovedBy = actor.Name
		return nil
	}

	env.StageResults[idx].Status = model.StageApproved

	// HRD shortcut: approving the division-head stage of an HRD & GA
	// request as the HRD head also settles the hrd_head stage.
	if chain[idx] == StageDivisionHead && IsHRDHead(actor) && SameDivision(sub.Division, DivisionHRD) {
		if idx+1 < len(chain) && chain[idx+1] == StageHRDHead {
			idx++
			env.StageResults[idx].Status = model.StageApproved
		}
	}

	if idx+1 < len(chain) {
		env.StageResults[idx+1].Status = model.StagePending
		env.OverallStatus = model.StatusPendingNextStage
		return nil
	}

	env.OverallStatus = model.StatusApproved
	env.ApprovedBy = actor.Name
	return nil
}

// currentStage returns the index of the first pending stage, or -1 when the
// request is terminal.
func currentStage(env *model.ApprovalEnvelope) int {
	for i, sr := range env.StageResults {
		if sr.Status == model.StagePending {
			return i
		}
	}
	return -1
}

// decidedEarlierStage reports whether the actor is authorized for a stage
// before idx that is no longer pending.
func decidedEarlierStage(env *model.ApprovalEnvelope, chain Chain, actor *model.User, division string, idx int) bool {
	for i := 0; i < idx; i++ {
		if CanActOn(actor, chain[i], division) && env.StageResults[i].Status != model.StageNotReached {
			return true
		}
	}
	return false
}
