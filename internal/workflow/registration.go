package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ucid-labs/ucid/internal/metrics"
	"github.com/ucid-labs/ucid/internal/mnemonic"
)

// RegistrationState is one step of the registration flow.
type RegistrationState interface {
	Step() string
	registrationState()
}

// Initial offers the create or import choice.
type Initial struct{}

// CreateName asks for the name of a new identity.
type CreateName struct{}

// CreateSeed shows the generated seed phrase and asks for a reveal code.
type CreateSeed struct {
	Name       string
	SeedPhrase string
}

// ImportName asks for the name of an imported identity.
type ImportName struct{}

// ImportDetails asks for the 12 words and an optional UID.
type ImportDetails struct {
	Name string
}

// Completed is terminal.
type Completed struct {
	Imported bool
}

func (Initial) Step() string       { return "initial" }
func (CreateName) Step() string    { return "create-name" }
func (CreateSeed) Step() string    { return "create-seed" }
func (ImportName) Step() string    { return "import-name" }
func (ImportDetails) Step() string { return "import-details" }
func (Completed) Step() string     { return "completed" }

func (Initial) registrationState()       {}
func (CreateName) registrationState()    {}
func (CreateSeed) registrationState()    {}
func (ImportName) registrationState()    {}
func (ImportDetails) registrationState() {}
func (Completed) registrationState()     {}

// Identity is the session surface registration writes to.
type Identity interface {
	Enroll(ctx context.Context, name, seedPhrase string) error
	ImportWallet(ctx context.Context, name, seedPhrase, uid string) bool
}

// SeedGenerator produces checked seed phrases.
type SeedGenerator interface {
	GenerateChecked() (string, error)
}

// Registration is the create/import state machine.
type Registration struct {
	identity Identity
	seeds    SeedGenerator
	codes    *RevealCodes
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu    sync.Mutex
	state RegistrationState
}

// NewRegistration starts a flow in the Initial state.
func NewRegistration(identity Identity, seeds SeedGenerator, codes *RevealCodes, logger *slog.Logger, m *metrics.Metrics) *Registration {
	return &Registration{
		identity: identity,
		seeds:    seeds,
		codes:    codes,
		logger:   logger.With(slog.String("component", "registration")),
		metrics:  m,
		state:    Initial{},
	}
}

// State returns the current state.
func (r *Registration) State() RegistrationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns to Initial from any state.
func (r *Registration) Reset() RegistrationState {
	next, _ := r.move("reset", func(RegistrationState) (RegistrationState, error) {
		return Initial{}, nil
	})
	return next
}

// ChooseCreate moves Initial to CreateName.
func (r *Registration) ChooseCreate() (RegistrationState, error) {
	return r.move("choose_create", func(s RegistrationState) (RegistrationState, error) {
		if _, ok := s.(Initial); !ok {
			return nil, ErrInvalidTransition
		}
		return CreateName{}, nil
	})
}

// ChooseImport moves Initial to ImportName.
func (r *Registration) ChooseImport() (RegistrationState, error) {
	return r.move("choose_import", func(s RegistrationState) (RegistrationState, error) {
		if _, ok := s.(Initial); !ok {
			return nil, ErrInvalidTransition
		}
		return ImportName{}, nil
	})
}

// SubmitName accepts a name in CreateName or ImportName. For a new identity
// it generates the seed phrase to show.
func (r *Registration) SubmitName(name string) (RegistrationState, error) {
	name = strings.TrimSpace(name)
	return r.move("submit_name", func(s RegistrationState) (RegistrationState, error) {
		switch s.(type) {
		case CreateName, ImportName:
		default:
			return nil, ErrInvalidTransition
		}
		if name == "" {
			return nil, ErrNameRequired
		}
		if _, ok := s.(ImportName); ok {
			return ImportDetails{Name: name}, nil
		}
		seed, err := r.seeds.GenerateChecked()
		if err != nil {
			r.logger.Error("registration.seed_generation failed", slog.Any("error", err))
			return nil, err
		}
		return CreateSeed{Name: name, SeedPhrase: seed}, nil
	})
}

// Back returns to the previous input step.
func (r *Registration) Back() (RegistrationState, error) {
	return r.move("back", func(s RegistrationState) (RegistrationState, error) {
		switch s.(type) {
		case CreateName, ImportName:
			return Initial{}, nil
		case CreateSeed:
			return CreateName{}, nil
		case ImportDetails:
			return ImportName{}, nil
		default:
			return nil, ErrInvalidTransition
		}
	})
}

// Complete stores the reveal code and enrolls the identity shown in CreateSeed.
func (r *Registration) Complete(ctx context.Context, revealCode string) (RegistrationState, error) {
	return r.move("complete", func(s RegistrationState) (RegistrationState, error) {
		st, ok := s.(CreateSeed)
		if !ok {
			return nil, ErrInvalidTransition
		}
		if err := ValidateRevealCode(revealCode); err != nil {
			return nil, err
		}
		if err := r.codes.Save(ctx, revealCode); err != nil {
			return nil, err
		}
		if err := r.identity.Enroll(ctx, st.Name, st.SeedPhrase); err != nil {
			r.logger.Error("registration.enroll failed", slog.Any("error", err))
			return nil, err
		}
		r.logger.Info("registration.completed", slog.Bool("imported", false))
		return Completed{}, nil
	})
}

// SubmitImport imports an identity from 12 words and an optional UID.
func (r *Registration) SubmitImport(ctx context.Context, words []string, uid string) (RegistrationState, error) {
	return r.move("submit_import", func(s RegistrationState) (RegistrationState, error) {
		st, ok := s.(ImportDetails)
		if !ok {
			return nil, ErrInvalidTransition
		}
		phrase, err := JoinWords(words)
		if err != nil {
			return nil, err
		}
		uid = strings.TrimSpace(uid)
		if !r.identity.ImportWallet(ctx, st.Name, phrase, uid) {
			msg := "Failed to register new wallet. Please try again."
			if uid != "" {
				msg = "Invalid seed phrase or UID. Please check your details and try again."
			}
			r.logger.Warn("registration.import rejected", slog.String("uid", uid))
			return nil, &ImportError{UID: uid, Message: msg}
		}
		r.logger.Info("registration.completed", slog.Bool("imported", true))
		return Completed{Imported: true}, nil
	})
}

// JoinWords validates a 12-slot word grid and joins it into a phrase.
func JoinWords(words []string) (string, error) {
	if len(words) != mnemonic.WordCount {
		return "", ErrIncompletePhrase
	}
	clean := make([]string, len(words))
	for i, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			return "", ErrIncompletePhrase
		}
		clean[i] = w
	}
	return strings.Join(clean, " "), nil
}

func (r *Registration) move(event string, fn func(RegistrationState) (RegistrationState, error)) (RegistrationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(r.state)
	if err != nil {
		return r.state, err
	}
	r.state = next
	r.metrics.WorkflowEvent("registration", event)
	return next, nil
}
