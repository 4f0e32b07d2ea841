package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrTokenMalformed = errors.New("malformed signed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("signed token expired")
)

// SignedURLSigner creates and validates time-limited download tokens that bind
// an owner id to a stored file.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SignedFile is the payload carried by a token.
type SignedFile struct {
	OwnerID   string
	Path      string
	ExpiresAt time.Time
}

// Generate returns a token referencing ownerID and relPath.
func (s *SignedURLSigner) Generate(ownerID, relPath string) (string, time.Time, error) {
	if ownerID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("owner id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	encodedOwner := base64.RawURLEncoding.EncodeToString([]byte(ownerID))
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(encodedOwner, ts, encodedPath)
	return strings.Join([]string{encodedOwner, ts, encodedPath, signature}, "."), expiresAt, nil
}

// Parse validates a token and returns the embedded file reference.
func (s *SignedURLSigner) Parse(token string) (SignedFile, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return SignedFile{}, ErrTokenMalformed
	}
	encodedOwner, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(encodedOwner, ts, encodedPath)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return SignedFile{}, ErrTokenSignature
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return SignedFile{}, ErrTokenMalformed
	}
	owner, err := base64.RawURLEncoding.DecodeString(encodedOwner)
	if err != nil {
		return SignedFile{}, ErrTokenMalformed
	}
	path, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return SignedFile{}, ErrTokenMalformed
	}

	expiresAt := time.Unix(expUnix, 0).UTC()
	if s.now().After(expiresAt) {
		return SignedFile{}, ErrTokenExpired
	}
	return SignedFile{OwnerID: string(owner), Path: string(path), ExpiresAt: expiresAt}, nil
}

func (s *SignedURLSigner) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
