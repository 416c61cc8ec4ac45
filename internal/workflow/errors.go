// Package workflow drives registration and per-wallet detail capture as
// explicit state machines.
package workflow

import "errors"

var (
	ErrInvalidTransition  = errors.New("workflow: action not allowed in current state")
	ErrNameRequired       = errors.New("please enter your name")
	ErrIncompletePhrase   = errors.New("please fill in all 12 words")
	ErrPrivateKeyRequired = errors.New("please enter your private key")
	ErrUIDRequired        = errors.New("please enter a UID")
	ErrSeedRequired       = errors.New("please enter a seed phrase")
	ErrUnknownWallet      = errors.New("wallet not found")
	ErrUnknownProvider    = errors.New("unknown wallet provider")
	ErrWalletConnected    = errors.New("wallet already connected")
	ErrNoActiveDetail     = errors.New("no wallet detail flow in progress")
)

// ImportError carries the user-facing reason an import was rejected.
type ImportError struct {
	UID     string
	Message string
}

func (e *ImportError) Error() string {
	return e.Message
}
