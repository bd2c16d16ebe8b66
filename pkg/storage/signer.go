package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadToken is the decoded content of a signed download link.
type DownloadToken struct {
	BatchID   string
	Name      string
	ExpiresAt time.Time
}

// Signer issues HMAC-signed, expiring download tokens of the form
// batchID.expiry.base64(name).base64(mac).
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer whose tokens live for ttl (default one hour).
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for the stored file name belonging to batchID.
func (s *Signer) Sign(batchID, name string) (string, time.Time, error) {
	if batchID == "" || name == "" || strings.Contains(batchID, ".") {
		return "", time.Time{}, ErrInvalidToken
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	head := batchID + "." + strconv.FormatInt(expiresAt.Unix(), 10) + "." + base64.RawURLEncoding.EncodeToString([]byte(name))
	return head + "." + s.mac(head), expiresAt, nil
}

// Verify checks the signature and expiry of token.
func (s *Signer) Verify(token string) (DownloadToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadToken{}, ErrInvalidToken
	}
	head := strings.Join(parts[:3], ".")
	if !hmac.Equal([]byte(s.mac(head)), []byte(parts[3])) {
		return DownloadToken{}, ErrInvalidToken
	}

	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadToken{}, ErrInvalidToken
	}
	name, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return DownloadToken{}, ErrInvalidToken
	}

	out := DownloadToken{BatchID: parts[0], Name: string(name), ExpiresAt: time.Unix(exp, 0).UTC()}
	if s.now().After(out.ExpiresAt) {
		return out, ErrTokenExpired
	}
	return out, nil
}

func (s *Signer) mac(payload string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}
