// Package token signs JSON payloads into compact, time-limited session tokens
// and verifies them back into payloads with a typed failure taxonomy.
package token

import (
	"crypto/sha256"
	stderrors "errors"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"

	autherrors "github.com/grcops/go-session-server/internal/errors"
)

const (
	// MinSecretLength is the minimum accepted length of the signing secret.
	// Anything shorter is a deployment misconfiguration, not a runtime error.
	MinSecretLength = 32

	// DefaultTTL is the lifetime of a freshly signed token.
	DefaultTTL = time.Hour

	// DefaultLeeway absorbs clock skew between the signing and verifying process.
	DefaultLeeway = 15 * time.Second

	hkdfInfo = "session-token-signing-key-v1"
)

// Payload is the cleartext content of a session token. The codec is
// payload-agnostic: any JSON-serializable claim set is accepted, apart from
// the registered claim names the codec manages itself.
type Payload map[string]any

var reservedClaims = []string{"iat", "exp", "jti", "iss"}

// Codec signs payloads into compact tokens and verifies them. A Codec is
// immutable after construction and safe for concurrent use.
type Codec struct {
	signer  Signer
	ttl     time.Duration
	leeway  time.Duration
	issuer  string
	nowFunc func() time.Time
}

type Option func(*Codec)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// WithLeeway overrides the clock-skew tolerance applied during verification.
func WithLeeway(leeway time.Duration) Option {
	return func(c *Codec) {
		c.leeway = leeway
	}
}

// WithNowFunc overrides the clock, used by tests to simulate expiry.
func WithNowFunc(now func() time.Time) Option {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// WithIssuer adds an iss claim to every signed token.
func WithIssuer(issuer string) Option {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// New creates a Codec whose HMAC-SHA256 signing key is derived from secret via
// HKDF. The secret comes from deployment configuration (AUTH_SECRET); a missing
// or short secret aborts construction rather than signing with a weak key.
func New(secret string, options ...Option) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.Wrap(autherrors.ErrWeakSecret, "token.New missing secret")
	}
	if len(secret) < MinSecretLength {
		return nil, errors.Wrapf(autherrors.ErrWeakSecret, "token.New secret length %d", len(secret))
	}

	c := &Codec{
		signer:  NewHMACSigner(deriveKey(secret)),
		ttl:     DefaultTTL,
		leeway:  DefaultLeeway,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.ttl <= 0 {
		return nil, errors.New("token.New invalid TTL configuration")
	}
	if c.leeway < 0 {
		return nil, errors.New("token.New invalid leeway configuration")
	}
	return c, nil
}

// deriveKey stretches the configured secret into a 256-bit signing key.
// The raw secret never touches the JWT library directly.
func deriveKey(secret string) []byte {
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		// Unreachable for SHA-256 with a 32-byte read.
		panic("token: hkdf key derivation failed: " + err.Error())
	}
	return key
}

// Encrypt signs payload into a compact token carrying the payload claims plus
// iat, exp (issuance + TTL), a unique jti, and the configured issuer.
func (c *Codec) Encrypt(payload Payload) (string, error) {
	if payload == nil {
		return "", errors.Wrap(autherrors.ErrInvalidPayload, "token.Codec.Encrypt nil payload")
	}
	for _, reserved := range reservedClaims {
		if _, ok := payload[reserved]; ok {
			return "", errors.Wrapf(autherrors.ErrInvalidPayload, "token.Codec.Encrypt reserved claim %q", reserved)
		}
	}

	now := c.nowFunc()
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(c.ttl).Unix()
	claims["jti"] = uuid.New().String()
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "token.Codec.Encrypt Sign")
	}
	return signed, nil
}

// Decrypt verifies tokenStr and returns the original payload claims (including
// the iat/exp added at signing time). Failures are returned as a
// *VerificationError; callers branch on its Kind, never on message text.
func (c *Codec) Decrypt(tokenStr string) (Payload, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, newVerificationError(KindUnauthenticated, "no session token provided")
	}

	// Structural check before any signature work.
	if strings.Count(tokenStr, ".") != 2 {
		return nil, newVerificationError(KindInvalidTokenFormat, "token must have exactly three segments")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.Parse(tokenStr, c.signer.GetVerificationKey)
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, newVerificationError(KindTokenVerificationFailed, "could not extract claims")
	}
	return Payload(claims), nil
}

func classifyParseError(err error) *VerificationError {
	switch {
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return newVerificationError(KindInvalidTokenSignature, "token signature does not match")
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return newVerificationError(KindTokenExpired, "token has expired")
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return newVerificationError(KindInvalidTokenFormat, "token is malformed")
	default:
		return newVerificationError(KindTokenVerificationFailed, err.Error())
	}
}
