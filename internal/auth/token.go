// Package auth mints and verifies the bearer tokens handed out by the API.
//
// A token is the CBOR encoding of Claims followed by a 64-byte Ed25519
// signature, sent as unpadded base64url. The signing key is derived from the
// configured secret, so every server sharing a secret accepts the same
// tokens.
package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Defaults applied by NewIssuer when a Config field is empty.
const (
	DefaultIssuer   = "simplejira"
	DefaultAudience = "simplejira-web"
	DefaultTTL      = 8 * time.Hour

	// DevUser is the identity every request runs as when auth is disabled.
	DevUser = "dev-user"

	keyContext = "simplejira token signing key v1"
)

// Claims is the signed payload of a token.
type Claims struct {
	ID        string `cbor:"1,keyasint"`
	Subject   string `cbor:"2,keyasint"`
	Name      string `cbor:"3,keyasint"`
	Issuer    string `cbor:"4,keyasint"`
	Audience  string `cbor:"5,keyasint"`
	IssuedAt  int64  `cbor:"6,keyasint"`
	ExpiresAt int64  `cbor:"7,keyasint"`
}

// Expires returns ExpiresAt as a time.
func (c *Claims) Expires() time.Time { return time.Unix(c.ExpiresAt, 0).UTC() }

// Errors returned by Verify.
var (
	ErrMalformed        = errors.New("auth: malformed token")
	ErrTokenTooShort    = errors.New("auth: token too short for signature")
	ErrInvalidSignature = errors.New("auth: invalid Ed25519 signature")
	ErrTokenExpired     = errors.New("auth: token has expired")
	ErrIssuerMismatch   = errors.New("auth: issuer does not match")
	ErrAudienceMismatch = errors.New("auth: audience does not match")
)

// Config configures an Issuer.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Issuer mints and verifies tokens for one issuer/audience pair.
type Issuer struct {
	issuer   string
	audience string
	ttl      time.Duration
	private  ed25519.PrivateKey
	public   ed25519.PublicKey
	now      func() time.Time
}

// NewIssuer derives the signing key from cfg.Secret.
func NewIssuer(cfg Config) (*Issuer, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = DefaultAudience
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	seed := blake3.Sum256([]byte(keyContext + "\x00" + cfg.Secret))
	private := ed25519.NewKeyFromSeed(seed[:])

	return &Issuer{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		private:  private,
		public:   private.Public().(ed25519.PublicKey),
		now:      time.Now,
	}, nil
}

// Mint returns a signed token for the given display name.
func (i *Issuer) Mint(name string) (string, *Claims, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, errors.New("auth: name is required")
	}
	now := i.now()
	claims := &Claims{
		ID:        uuid.NewString(),
		Subject:   name,
		Name:      name,
		Issuer:    i.issuer,
		Audience:  i.audience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	}

	payload, err := encMode.Marshal(claims)
	if err != nil {
		return "", nil, fmt.Errorf("auth: encoding claims: %w", err)
	}
	signature := ed25519.Sign(i.private, payload)

	raw := make([]byte, len(payload)+ed25519.SignatureSize)
	copy(raw, payload)
	copy(raw[len(payload):], signature)

	return base64.RawURLEncoding.EncodeToString(raw), claims, nil
}

// Verify checks the signature, expiry, issuer and audience of a token.
func (i *Issuer) Verify(token string) (*Claims, error) {
	return i.VerifyAt(token, i.now())
}

// VerifyAt is like Verify but checks expiry against now.
func (i *Issuer) VerifyAt(token string, now time.Time) (*Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrMalformed
	}
	if len(raw) <= ed25519.SignatureSize {
		return nil, ErrTokenTooShort
	}

	split := len(raw) - ed25519.SignatureSize
	payload, signature := raw[:split], raw[split:]
	if !ed25519.Verify(i.public, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var claims Claims
	if err := decMode.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if now.Unix() >= claims.ExpiresAt {
		return nil, ErrTokenExpired
	}
	if claims.Issuer != i.issuer {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrIssuerMismatch, claims.Issuer, i.issuer)
	}
	if claims.Audience != i.audience {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrAudienceMismatch, claims.Audience, i.audience)
	}
	return &claims, nil
}
