package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for reset tokens
    "encoding/hex"  // hex encoding functions
    "errors"        // sentinel error values
    "time"          // expiration arithmetic

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned when a session token is malformed, carries an
// unexpected signing method, fails signature verification or has expired.
var ErrInvalidToken = errors.New("invalid token")

// SessionToken represents a signed JWT session token along with its expiry.
// Sessions are stateless: validity is purely cryptographic plus the exp
// claim, which means a token cannot be revoked before its natural expiry.
// That trade-off is accepted so that verification needs no database lookup.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ResetToken is the ephemeral pair produced when a password reset is
// requested.  Raw is handed to the mail collaborator exactly once; only its
// SHA-256 digest is ever persisted.
type ResetToken struct {
    Raw string    // raw token string delivered out of band
    Exp time.Time // UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a principal.  The JWT
// carries the subject (sub), the numeric role tag, expiration (exp) and
// issued-at (iat) claims and nothing else.
func NewSessionToken(secret string, principalID uint64, role int, ttlDays int) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "sub":  principalID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a session token and
// returns the principal id and role it carries.  There is no revocation
// list to consult.
func ParseSessionToken(secret, raw string) (principalID uint64, role int, err error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, 0, ErrInvalidToken
    }
    // Numeric JSON claims decode as float64.
    sub, ok := claims["sub"].(float64)
    if !ok {
        return 0, 0, ErrInvalidToken
    }
    r, ok := claims["role"].(float64)
    if !ok {
        return 0, 0, ErrInvalidToken
    }
    return uint64(sub), int(r), nil
}

// NewResetToken returns a cryptographically random reset token and its
// expiration time.  The raw value is 32 bytes of entropy rendered as 64 hex
// characters, matching what gets mailed to the account holder.
func NewResetToken(ttlMin int) (ResetToken, error) {
    raw, err := randomHex(32)
    if err != nil {
        return ResetToken{}, err
    }
    return ResetToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
    }, nil
}

// HashResetRaw returns the SHA-256 digest of a raw reset token as a hex
// string.  The token itself is high-entropy and single-use, so a plain
// unsalted digest is sufficient; storing only the digest keeps a leaked
// database row from being redeemable.
func HashResetRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
