package core

import "errors"

// Error kinds surfaced by the bond engine. Each is scoped to a single bond
// or agent action; none is fatal to the surrounding population.
var (
	ErrAgentNotFound       = errors.New("agent not found")
	ErrBondNotFound        = errors.New("bond not found")
	ErrNotParticipant      = errors.New("agent is not part of this bond")
	ErrInvalidStake        = errors.New("invalid stake")
	ErrAgentBusy           = errors.New("agent already in an active bond")
	ErrWrongState          = errors.New("operation not valid in current bond state")
	ErrDuplicateCommitment = errors.New("duplicate commitment")
	ErrDuplicateReveal     = errors.New("duplicate reveal")
	ErrRevealMismatch      = errors.New("reveal does not match commitment")
	ErrStaleBond           = errors.New("bond past its reveal deadline")
	ErrLedgerFailure       = errors.New("ledger did not acknowledge settlement")
	ErrInsufficientBalance = errors.New("insufficient balance for stake")
)
