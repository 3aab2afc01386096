package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingAccount = errors.New("accountId missing in token payload")

// Account is the account claim embedded by the signage backend.
// The backend has issued both string and numeric ids, so both decode.
type Account struct {
	ID string `json:"id"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := bytes.TrimSpace(raw.ID)
	if len(id) == 0 || string(id) == "null" {
		a.ID = ""
		return nil
	}

	if id[0] == '"' {
		return json.Unmarshal(id, &a.ID)
	}

	var n json.Number
	if err := json.Unmarshal(id, &n); err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}
	a.ID = n.String()
	return nil
}

type Claims struct {
	Account *Account `json:"account,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) AccountID() string {
	if c == nil || c.Account == nil {
		return ""
	}
	return c.Account.ID
}

// Decode reads the claims without verifying the signature. The console never
// holds the backend signing key; it only needs exp and the account id.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return claims, nil
}

// IsExpired reports whether token is unusable at now. Undecodable tokens and
// tokens without an exp claim count as expired; there is no grace window.
func IsExpired(token string, now time.Time) bool {
	claims, err := Decode(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// AccountIDFromToken extracts account.id from an access token.
func AccountIDFromToken(token string) (string, error) {
	claims, err := Decode(token)
	if err != nil {
		return "", err
	}
	if claims.AccountID() == "" {
		return "", ErrMissingAccount
	}
	return claims.AccountID(), nil
}

// GenerateToken mints an HS256 access token shaped like the backend's.
func GenerateToken(accountID string, expiration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Account: &Account{ID: accountID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
