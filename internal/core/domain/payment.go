package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlowStage is the position of the payment flow state machine.
type FlowStage string

const (
	FlowStageIdle         FlowStage = "IDLE"
	FlowStageAppSelection FlowStage = "APP_SELECTION"
	FlowStageProcessing   FlowStage = "PROCESSING"
	FlowStageSuccess      FlowStage = "SUCCESS"
	FlowStageFailed       FlowStage = "FAILED"
)

// Cancellable reports whether the user may back out at this stage.
// Once settlement has started the payment is committed.
func (s FlowStage) Cancellable() bool {
	return s == FlowStageIdle || s == FlowStageAppSelection || s == FlowStageFailed
}

// FlowState is a snapshot of the payment flow.
// Fields other than Stage are zero in Idle.
type FlowState struct {
	Stage        FlowStage       `json:"stage"`
	Counterparty string          `json:"counterparty,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Provider     string          `json:"provider,omitempty"`
	Attempt      uuid.UUID       `json:"attempt"`  // changes every time Processing is entered
	Attempts     int             `json:"attempts"` // settlement attempts made so far
	LastError    string          `json:"last_error,omitempty"`
}

// IdleState is the resting state of the machine.
func IdleState() FlowState {
	return FlowState{Stage: FlowStageIdle, Amount: decimal.Zero}
}
