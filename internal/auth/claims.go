package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Purpose binds a claim token to the flow it was issued for.
type Purpose string

const (
	// PurposeRegister is used for self registration.
	PurposeRegister Purpose = "register"
	// PurposeResetPassword is used for password resets.
	PurposeResetPassword Purpose = "reset_password"
	// PurposeUpdateContact is used when binding a private email or mobile.
	PurposeUpdateContact Purpose = "update_contact"
	// PurposeUpdateMobile is used when replacing the mobile number.
	PurposeUpdateMobile Purpose = "update_mobile"
)

const usedTokenCacheSize = 10000

// Claim is a verified assertion about a mobile number or an email address.
type Claim struct {
	Mobile string
	Email  string
	// ID identifies the token the claim was read from. Set by the verifier.
	ID string
}

// ClaimVerifier checks the opaque tokens handed out after an SMS or email code
// was confirmed and returns the asserted identifier.
//
// Verifying does not use a token up. Flows call Consume once the request has
// passed every check, and Release when the write it guards fails, so a
// rejected request can be retried with the same token.
type ClaimVerifier interface {
	VerifySMS(ctx context.Context, token string, purpose Purpose) (*Claim, error)
	VerifyEmail(ctx context.Context, token string, purpose Purpose) (*Claim, error)
	Consume(ctx context.Context, claims ...*Claim) error
	Release(ctx context.Context, claims ...*Claim)
}

type claimToken struct {
	Mobile  string  `json:"mobile,omitempty"`
	Email   string  `json:"email,omitempty"`
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTClaimVerifier verifies HS256 signed claim tokens. Each token id can be
// consumed once while the token is valid.
type JWTClaimVerifier struct {
	secret []byte
	issuer string
	ttl    time.Duration

	mu   sync.Mutex
	used *expirable.LRU[string, struct{}]
}

// NewJWTClaimVerifier creates a verifier for tokens signed with secret by issuer.
// ttl is the lifetime of issued tokens.
func NewJWTClaimVerifier(secret, issuer string, ttl time.Duration) *JWTClaimVerifier {
	return &JWTClaimVerifier{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		used:   expirable.NewLRU[string, struct{}](usedTokenCacheSize, nil, ttl),
	}
}

// Issue signs a claim token for c. It is used by the code confirmation endpoints
// of the SMS and email gateways.
func (v *JWTClaimVerifier) Issue(c Claim, purpose Purpose) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claimToken{
		Mobile:  c.Mobile,
		Email:   c.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign claim token: %w", err)
	}

	return signed, nil
}

// VerifySMS implements ClaimVerifier.
func (v *JWTClaimVerifier) VerifySMS(_ context.Context, token string, purpose Purpose) (*Claim, error) {
	c, err := v.verify(token, purpose)
	if err != nil {
		return nil, err
	}

	if c.Mobile == "" {
		return nil, fmt.Errorf("%w: no mobile claim", ErrInvalidClaimToken)
	}

	return &Claim{Mobile: c.Mobile, ID: c.ID}, nil
}

// VerifyEmail implements ClaimVerifier.
func (v *JWTClaimVerifier) VerifyEmail(_ context.Context, token string, purpose Purpose) (*Claim, error) {
	c, err := v.verify(token, purpose)
	if err != nil {
		return nil, err
	}

	if c.Email == "" {
		return nil, fmt.Errorf("%w: no email claim", ErrInvalidClaimToken)
	}

	return &Claim{Email: c.Email, ID: c.ID}, nil
}

func (v *JWTClaimVerifier) verify(raw string, purpose Purpose) (*claimToken, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidClaimToken)
	}

	token, err := jwt.ParseWithClaims(raw, &claimToken{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaimToken, err)
	}

	c, ok := token.Claims.(*claimToken)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaimToken
	}

	if c.Purpose != purpose {
		return nil, fmt.Errorf("%w: issued for %s", ErrInvalidClaimToken, c.Purpose)
	}

	if c.ID == "" {
		return nil, fmt.Errorf("%w: no token id", ErrInvalidClaimToken)
	}

	if v.used.Contains(c.ID) {
		return nil, ErrClaimTokenUsed
	}

	return c, nil
}

// Consume marks the tokens of claims as used. Either all of them are marked
// or, when one was used already, none. Nil claims are skipped.
func (v *JWTClaimVerifier) Consume(_ context.Context, claims ...*Claim) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	seen := make(map[string]struct{}, len(claims))

	for _, c := range claims {
		if c == nil {
			continue
		}

		if c.ID == "" {
			return fmt.Errorf("%w: no token id", ErrInvalidClaimToken)
		}

		if _, dup := seen[c.ID]; dup || v.used.Contains(c.ID) {
			return ErrClaimTokenUsed
		}

		seen[c.ID] = struct{}{}
	}

	for id := range seen {
		v.used.Add(id, struct{}{})
	}

	return nil
}

// Release makes consumed tokens usable again.
func (v *JWTClaimVerifier) Release(_ context.Context, claims ...*Claim) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, c := range claims {
		if c != nil && c.ID != "" {
			v.used.Remove(c.ID)
		}
	}
}
