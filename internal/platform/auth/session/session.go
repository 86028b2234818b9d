// Package session issues and verifies the HS256 bearer tokens handed out by
// POST /login.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/costa-brava-bikers/clubhouse-api/internal/domain"
	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/config"
	clockport "github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/clock"
)

var ErrUnauthorized = errors.New("unauthorized")

type Claims struct {
	Role domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	cfg config.SessionConfig
	clk clockport.Clock
}

func NewManager(cfg config.SessionConfig, clk clockport.Clock) *Manager {
	return &Manager{cfg: cfg, clk: clk}
}

// Issue signs a token for the member, valid for the configured TTL.
func (m *Manager) Issue(member domain.Member) (string, time.Time, error) {
	now := m.clk.Now()
	exp := now.Add(m.cfg.TTL)
	claims := Claims{
		Role: member.EffectiveRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   string(member.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer and validity window and returns the member id.
func (m *Manager) Verify(_ context.Context, token string) (domain.MemberID, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithTimeFunc(m.clk.Now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return domain.MemberID(claims.Subject), nil
}
