package apns

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sideshow/apns2/token"
)

// DefaultRefreshThreshold is how long a minted provider token is reused
// before a fresh one is signed. Apple accepts tokens for up to an hour;
// refreshing at 45 minutes keeps a comfortable margin.
const DefaultRefreshThreshold = 45 * time.Minute

// credential pairs a bearer token with its issuance time. The two fields
// describe one logical fact and are only ever swapped together.
type credential struct {
	bearer   string
	issuedAt time.Time
}

// TokenConfig holds the credentials required to sign APNs provider tokens.
type TokenConfig struct {
	KeyID  string
	TeamID string
	// P8KeyContent is the raw string content of the .p8 file.
	P8KeyContent string
	// RefreshThreshold overrides DefaultRefreshThreshold when positive.
	RefreshThreshold time.Duration
}

// TokenSource lazily mints and caches the signed bearer token every gateway
// request carries. It is shared process-wide by all dispatch attempts.
type TokenSource struct {
	keyID        string
	teamID       string
	signingKey   *ecdsa.PrivateKey
	refreshAfter time.Duration
	logger       *slog.Logger

	mu   sync.Mutex
	cred credential

	// Swapped out by tests to simulate clocks and mint failures.
	now  func() time.Time
	mint func(now time.Time) (string, error)
}

// NewTokenSource parses the P8 key and mints the first token immediately to
// fail fast on startup if the credentials are bad.
func NewTokenSource(cfg TokenConfig, logger *slog.Logger) (*TokenSource, error) {
	authKey, err := token.AuthKeyFromBytes([]byte(cfg.P8KeyContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse APNs P8 key: %w", err)
	}

	refreshAfter := cfg.RefreshThreshold
	if refreshAfter <= 0 {
		refreshAfter = DefaultRefreshThreshold
	}

	s := &TokenSource{
		keyID:        cfg.KeyID,
		teamID:       cfg.TeamID,
		signingKey:   authKey,
		refreshAfter: refreshAfter,
		logger:       logger.With("component", "APNSTokenSource"),
		now:          time.Now,
	}
	s.mint = s.mintJWT

	issued := s.now()
	bearer, err := s.mint(issued)
	if err != nil {
		return nil, fmt.Errorf("failed to mint initial APNs token: %w", err)
	}
	s.cred = credential{bearer: bearer, issuedAt: issued}

	return s, nil
}

// Bearer returns a currently valid provider token, minting a replacement when
// the cached one has crossed the refresh threshold. If minting fails at
// runtime the last known token is returned instead; the delivery may then be
// rejected downstream, which best-effort semantics tolerate.
//
// The critical section covers only the ES256 signature and the credential
// swap. No I/O happens under the lock.
func (s *TokenSource) Bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.cred.issuedAt) < s.refreshAfter {
		return s.cred.bearer
	}

	bearer, err := s.mint(now)
	if err != nil {
		s.logger.Warn("token refresh failed, reusing cached token", "err", err)
		return s.cred.bearer
	}

	s.cred = credential{bearer: bearer, issuedAt: now}
	return bearer
}

func (s *TokenSource) mintJWT(now time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": s.teamID,
		"iat": now.Unix(),
	})
	t.Header["kid"] = s.keyID
	return t.SignedString(s.signingKey)
}
