// Package auth authenticates the admin configuration/CRUD boundary.
// Submission and streaming-boundary endpoints are intentionally left
// open: they are either public intake or a trusted internal caller,
// not a DJ logging in.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrMissingToken       = errors.New("missing authorization token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts, please try again later")
)

// Config holds the authentication configuration for the single admin
// account this backend serves.
type Config struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration

	MaxLoginAttempts   int
	LoginWindowSeconds int
}

type jwtHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Claims is the JWT payload.
type Claims struct {
	Sub string `json:"sub"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}

type loginAttempt struct {
	timestamps []time.Time
}

// rateLimiter tracks failed login attempts per IP using a sliding window.
type rateLimiter struct {
	mu         sync.Mutex
	attempts   map[string]*loginAttempt
	maxFails   int
	windowSize time.Duration
}

func newRateLimiter(maxFails int, windowSize time.Duration) *rateLimiter {
	if maxFails <= 0 {
		maxFails = 5
	}
	if windowSize <= 0 {
		windowSize = 15 * time.Minute
	}
	rl := &rateLimiter{
		attempts:   make(map[string]*loginAttempt),
		maxFails:   maxFails,
		windowSize: windowSize,
	}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) isAllowed(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.attempts[key]
	if !exists {
		return true
	}
	rl.pruneOld(entry)
	return len(entry.timestamps) < rl.maxFails
}

func (rl *rateLimiter) recordFailure(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.attempts[key]
	if !exists {
		entry = &loginAttempt{}
		rl.attempts[key] = entry
	}
	rl.pruneOld(entry)
	entry.timestamps = append(entry.timestamps, time.Now())
}

func (rl *rateLimiter) recordSuccess(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
}

func (rl *rateLimiter) pruneOld(entry *loginAttempt) {
	cutoff := time.Now().Add(-rl.windowSize)
	n := 0
	for _, t := range entry.timestamps {
		if t.After(cutoff) {
			entry.timestamps[n] = t
			n++
		}
	}
	entry.timestamps = entry.timestamps[:n]
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for key, entry := range rl.attempts {
			rl.pruneOld(entry)
			if len(entry.timestamps) == 0 {
				delete(rl.attempts, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) remainingLockout(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.attempts[key]
	if !exists || len(entry.timestamps) == 0 {
		return 0
	}
	rl.pruneOld(entry)
	if len(entry.timestamps) < rl.maxFails {
		return 0
	}
	oldest := entry.timestamps[0]
	return time.Until(oldest.Add(rl.windowSize))
}

// Auth handles admin authentication and JWT issuance/validation.
type Auth struct {
	config       Config
	passwordHash []byte
	limiter      *rateLimiter
}

// New hashes the configured admin password with bcrypt immediately; the
// plaintext is not retained.
func New(cfg Config) *Auth {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.MaxLoginAttempts == 0 {
		cfg.MaxLoginAttempts = 5
	}
	if cfg.LoginWindowSeconds == 0 {
		cfg.LoginWindowSeconds = 900
	}

	if len(cfg.JWTSecret) < 32 {
		slog.Warn("auth: JWT secret is shorter than 32 characters")
	}
	if cfg.JWTSecret == "change-me-in-production-please" {
		slog.Warn("auth: using default JWT secret, change it in production")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("auth: failed to hash admin password", "error", err)
		hash = []byte("$2a$10$INVALIDHASHXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX")
	}
	cfg.Password = ""

	windowDuration := time.Duration(cfg.LoginWindowSeconds) * time.Second
	return &Auth{
		config:       cfg,
		passwordHash: hash,
		limiter:      newRateLimiter(cfg.MaxLoginAttempts, windowDuration),
	}
}

// Authenticate checks username/password and, on success, returns a
// signed token. remoteAddr feeds the per-IP rate limiter.
func (a *Auth) Authenticate(username, password, remoteAddr string) (string, error) {
	ip := extractIP(remoteAddr)

	if !a.limiter.isAllowed(ip) {
		remaining := a.limiter.remainingLockout(ip)
		slog.Warn("auth: login rate-limited", "ip", ip, "retry_after_seconds", int(remaining.Seconds()))
		return "", ErrRateLimited
	}

	usernameMatch := hmacEqualStrings(username, a.config.Username)
	passwordErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	passwordMatch := passwordErr == nil

	if !usernameMatch || !passwordMatch {
		a.limiter.recordFailure(ip)
		return "", ErrInvalidCredentials
	}

	a.limiter.recordSuccess(ip)
	return a.CreateToken(username)
}

// CreateToken issues a signed token for subject.
func (a *Auth) CreateToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{Sub: subject, Iat: now.Unix(), Exp: now.Add(a.config.TokenTTL).Unix()}
	return a.sign(claims)
}

// ValidateToken parses and verifies a token string, rejecting anything
// not HS256/JWT, badly signed, expired, or issued in the future.
func (a *Auth) ValidateToken(tokenStr string) (*Claims, error) {
	if len(tokenStr) > 4096 {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode header", ErrInvalidToken)
	}
	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to parse header", ErrInvalidToken)
	}
	if header.Alg != "HS256" {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidToken, header.Alg)
	}
	if header.Typ != "JWT" {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidToken, header.Typ)
	}

	signingInput := parts[0] + "." + parts[1]
	expectedSig := a.computeHMAC(signingInput)
	if !hmacEqualB64(expectedSig, parts[2]) {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode claims", ErrInvalidToken)
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims", ErrInvalidToken)
	}

	now := time.Now().Unix()
	if now > claims.Exp {
		return nil, ErrExpiredToken
	}
	if claims.Iat > now+60 {
		return nil, fmt.Errorf("%w: token issued in the future", ErrInvalidToken)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return &claims, nil
}

// IsRateLimited reports whether remoteAddr is currently locked out.
func (a *Auth) IsRateLimited(remoteAddr string) bool {
	return !a.limiter.isAllowed(extractIP(remoteAddr))
}

// RemainingLockout returns the time left before remoteAddr can retry.
func (a *Auth) RemainingLockout(remoteAddr string) time.Duration {
	return a.limiter.remainingLockout(extractIP(remoteAddr))
}

func (a *Auth) sign(claims Claims) (string, error) {
	header := jwtHeader{Alg: "HS256", Typ: "JWT"}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	headerB64 := base64URLEncode(headerJSON)
	claimsB64 := base64URLEncode(claimsJSON)
	signingInput := headerB64 + "." + claimsB64
	return signingInput + "." + a.computeHMAC(signingInput), nil
}

func (a *Auth) computeHMAC(input string) string {
	mac := hmac.New(sha256.New, []byte(a.config.JWTSecret))
	mac.Write([]byte(input))
	return base64URLEncode(mac.Sum(nil))
}

func hmacEqualB64(a, b string) bool {
	// Strict decoding rejects non-zero trailing padding bits, so a
	// signature altered only in those bits does not decode to the same MAC.
	aDec, errA := base64.RawURLEncoding.Strict().DecodeString(a)
	bDec, errB := base64.RawURLEncoding.Strict().DecodeString(b)
	if errA != nil || errB != nil {
		return false
	}
	return hmac.Equal(aDec, bDec)
}

func hmacEqualStrings(a, b string) bool {
	h1 := sha256.Sum256([]byte(a))
	h2 := sha256.Sum256([]byte(b))
	return hmac.Equal(h1[:], h2[:])
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(s)
	}
	return data, err
}

func extractIP(remoteAddr string) string {
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]:"); idx != -1 {
			return remoteAddr[1:idx]
		}
		return strings.Trim(remoteAddr, "[]")
	}
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}
	return remoteAddr
}
