package workflow

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Action is what the user wants to do with a wallet's stored details.
type Action string

const (
	ActionShow Action = "show"
	ActionEdit Action = "edit"
)

// Authentication methods recorded in action tokens.
const (
	MethodPassword = "password"
	MethodFaceScan = "face_scan"
)

var (
	ErrFaceScanFailed = errors.New("face scan failed, please try again")
	ErrInvalidToken   = errors.New("invalid or expired wallet action token")
	ErrInvalidAction  = errors.New("unsupported wallet action")
	ErrTokenRedeemed  = errors.New("wallet action token already used")
)

// PendingAction is the verified content of an action token.
type PendingAction struct {
	TokenID   string
	WalletID  string
	Action    Action
	Method    string
	ExpiresAt time.Time
}

// FaceScanner performs a liveness check.
type FaceScanner interface {
	Scan(ctx context.Context) (bool, error)
}

// SimulatedFaceScanner succeeds with probability rate after delay.
type SimulatedFaceScanner struct {
	rate  float64
	delay time.Duration
	roll  func() float64
}

// NewSimulatedFaceScanner builds a scanner with the given success rate.
func NewSimulatedFaceScanner(rate float64, delay time.Duration) *SimulatedFaceScanner {
	return &SimulatedFaceScanner{rate: rate, delay: delay, roll: mrand.Float64}
}

func (f *SimulatedFaceScanner) Scan(ctx context.Context) (bool, error) {
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return f.roll() < f.rate, nil
}

type actionClaims struct {
	WalletID string `json:"wid"`
	Action   Action `json:"act"`
	Method   string `json:"amr"`
	jwt.RegisteredClaims
}

// PasswordVerifier checks the dashboard password.
type PasswordVerifier interface {
	VerifyPassword(password string) bool
}

// Gate authenticates the user before a wallet's details are shown or edited
// and hands out a short-lived HS256 token naming the wallet and action.
type Gate struct {
	secret    []byte
	ttl       time.Duration
	passwords PasswordVerifier
	scanner   FaceScanner
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	spent map[string]time.Time
}

// NewGate builds a gate. An empty secret is replaced by a random one, which
// invalidates tokens on restart.
func NewGate(secret string, ttl time.Duration, passwords PasswordVerifier, scanner FaceScanner, logger *slog.Logger) (*Gate, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate action token secret: %w", err)
		}
	}
	return &Gate{
		secret:    key,
		ttl:       ttl,
		passwords: passwords,
		scanner:   scanner,
		logger:    logger.With(slog.String("component", "gate")),
		now:       time.Now,
		spent:     make(map[string]time.Time),
	}, nil
}

// AuthorizePassword issues a token when password matches.
func (g *Gate) AuthorizePassword(walletID string, action Action, password string) (string, error) {
	if err := validAction(action); err != nil {
		return "", err
	}
	if !g.passwords.VerifyPassword(password) {
		g.logger.Warn("gate.password rejected", slog.String("wallet_id", walletID))
		return "", ErrInvalidPassword
	}
	return g.issue(walletID, action, MethodPassword)
}

// AuthorizeFaceScan issues a token when the face scan succeeds.
func (g *Gate) AuthorizeFaceScan(ctx context.Context, walletID string, action Action) (string, error) {
	if err := validAction(action); err != nil {
		return "", err
	}
	ok, err := g.scanner.Scan(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		g.logger.Info("gate.face_scan failed", slog.String("wallet_id", walletID))
		return "", ErrFaceScanFailed
	}
	return g.issue(walletID, action, MethodFaceScan)
}

// Validate parses and verifies a token.
func (g *Gate) Validate(token string) (PendingAction, error) {
	var claims actionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		return PendingAction{}, ErrInvalidToken
	}
	if validAction(claims.Action) != nil || claims.WalletID == "" || claims.ID == "" {
		return PendingAction{}, ErrInvalidToken
	}
	return PendingAction{
		TokenID:   claims.ID,
		WalletID:  claims.WalletID,
		Action:    claims.Action,
		Method:    claims.Method,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Redeem validates token and consumes it. A token opens at most one detail
// flow; spent ids are remembered until the token would have expired.
func (g *Gate) Redeem(token string) (PendingAction, error) {
	pending, err := g.Validate(token)
	if err != nil {
		return PendingAction{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for id, exp := range g.spent {
		if !now.Before(exp) {
			delete(g.spent, id)
		}
	}
	if _, used := g.spent[pending.TokenID]; used {
		g.logger.Warn("gate.token replayed", slog.String("wallet_id", pending.WalletID))
		return PendingAction{}, ErrTokenRedeemed
	}
	g.spent[pending.TokenID] = pending.ExpiresAt
	return pending, nil
}

func (g *Gate) issue(walletID string, action Action, method string) (string, error) {
	now := g.now()
	claims := actionClaims{
		WalletID: walletID,
		Action:   action,
		Method:   method,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign action token: %w", err)
	}
	g.logger.Info("gate.authorized", slog.String("wallet_id", walletID), slog.String("action", string(action)), slog.String("method", method))
	return token, nil
}

func validAction(a Action) error {
	switch a {
	case ActionShow, ActionEdit:
		return nil
	default:
		return ErrInvalidAction
	}
}
