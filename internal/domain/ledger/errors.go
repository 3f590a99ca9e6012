package ledger

import (
	"errors"

	"github.com/okian/scorebook/internal/domain/catalog"
)

// Sentinel error kinds for ledger commands.
var (
	// ErrUnknownEventKey is the catalog's sentinel, re-exported for callers
	// that only import the ledger.
	ErrUnknownEventKey    = catalog.ErrUnknownEventKey
	ErrMissingParticipant = errors.New("participant required")
	ErrUnknownSequenceID  = errors.New("unknown sequence id")

	// ErrReservedParticipant rejects ids that would collide with a fixed
	// pivot column label.
	ErrReservedParticipant = errors.New("participant id is reserved")

	// ErrIntegrity means the stored history no longer replays against the
	// catalog. It is never caused by caller input.
	ErrIntegrity = errors.New("ledger integrity violation")
)
