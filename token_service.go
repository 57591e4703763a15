package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	// DefaultTokenIssuer is the iss claim stamped on issued tokens.
	DefaultTokenIssuer = "go-users"
	// DefaultTokenAudience is the aud claim stamped on issued tokens.
	DefaultTokenAudience = "go-users/management-portal"
	// DefaultTokenExpiration is how long an issued token stays valid.
	DefaultTokenExpiration = time.Hour
	// AuthoritiesClaim is the key for the authorities array claim.
	AuthoritiesClaim = "authorities"
)

// TokenService mints and verifies the signed tokens used for stateless
// authentication. Tokens are compact JWS signed with HMAC-SHA-512 over the
// shared signing key; the key is never logged.
type TokenService struct {
	signingKey   []byte
	expiration   time.Duration
	issuer       string
	audience     jwt.ClaimStrings
	matchSubject bool
	clock        func() time.Time
	logger       Logger
}

// NewTokenService creates a new TokenService instance. A zero expiration
// falls back to DefaultTokenExpiration. The subject check in IsValid is
// strict by default; see WithSubjectMatching.
func NewTokenService(signingKey []byte, expiration time.Duration, issuer, audience string, logger Logger) *TokenService {
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}
	if issuer == "" {
		issuer = DefaultTokenIssuer
	}
	if audience == "" {
		audience = DefaultTokenAudience
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey:   signingKey,
		expiration:   expiration,
		issuer:       issuer,
		audience:     jwt.ClaimStrings{audience},
		matchSubject: true,
		clock:        time.Now,
		logger:       logger,
	}
}

// NewTokenServiceFromConfig builds a TokenService from a Config.
func NewTokenServiceFromConfig(cfg Config, logger Logger) *TokenService {
	ts := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
	)
	return ts.WithSubjectMatching(cfg.GetStrictSubjectCheck())
}

// WithClock overrides the time source used for issuance and validation.
func (ts *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		ts.clock = clock
	}
	return ts
}

// WithSubjectMatching toggles whether IsValid requires the caller supplied
// subject to equal the token's own subject claim. The legacy behavior only
// required a non blank subject, which accepts any valid token for any
// claimed username; keep this on unless compatibility demands otherwise.
func (ts *TokenService) WithSubjectMatching(enabled bool) *TokenService {
	ts.matchSubject = enabled
	return ts
}

// Generate creates a signed token for the identity carrying the given
// authorities, order preserved. Expiry is issuance time plus the configured
// duration.
func (ts *TokenService) Generate(identity Identity, authorities []string) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := ts.clock()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Username(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		Authorities: authorities,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Subject verifies the token's signature and issuer and returns its subject
// claim. Expiry is not checked here; IsValid owns that decision.
func (ts *TokenService) Subject(tokenString string) (string, error) {
	claims, err := ts.decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// Authorities verifies the token's signature and issuer and returns the
// authorities claim, order preserved.
func (ts *TokenService) Authorities(tokenString string) ([]string, error) {
	claims, err := ts.decode(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.AuthoritySet(), nil
}

// IsValid reports whether the token should authenticate the given subject:
// the subject must be non blank, the signature and issuer must verify, and
// the current time must be before the expires-at claim. When subject
// matching is enabled the subject must also equal the token's own subject.
func (ts *TokenService) IsValid(subject, tokenString string) bool {
	if strings.TrimSpace(subject) == "" {
		return false
	}

	claims, err := ts.Validate(tokenString)
	if err != nil {
		return false
	}

	if ts.matchSubject && claims.Subject() != subject {
		return false
	}

	return true
}

// Validate parses and fully validates a token string, returning its claims.
func (ts *TokenService) Validate(tokenString string) (*AccessClaims, error) {
	return ts.parse(tokenString, jwt.WithIssuer(ts.issuer))
}

// decode verifies signature and issuer but skips time based claim checks.
func (ts *TokenService) decode(tokenString string) (*AccessClaims, error) {
	claims, err := ts.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}

	if claims.RegisteredClaims.Issuer != ts.issuer {
		return nil, ErrTokenSignatureInvalid
	}

	return claims, nil
}

func (ts *TokenService) parse(tokenString string, opts ...jwt.ParserOption) (*AccessClaims, error) {
	opts = append(opts, jwt.WithTimeFunc(ts.clock))

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, opts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		ts.logger.Error("token service could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
