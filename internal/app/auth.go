package app

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultAuthFile = "auth.secret"
	authRealm       = "Thermotec Agenda"
)

// ErrAuthFileExists is returned by CreateAuthFile when the user declines to overwrite.
var ErrAuthFileExists = errors.New("auth file already exists")

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Auth guards the routes that change appointments with Basic Auth.
// A zero Auth lets every request through.
type Auth struct {
	user   string
	hash   string
	logger *slog.Logger
}

// Enabled reports whether credentials were loaded.
func (a *Auth) Enabled() bool {
	return a != nil && a.hash != ""
}

// ResolveAuthFile returns path, or auth.secret next to the binary when empty.
func ResolveAuthFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile), nil
}

// LoadAuth reads "username:hash" from path. A missing file disables auth.
func LoadAuth(path string, logger *slog.Logger) (*Auth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("⚠️  no auth file found, appointment changes are UNPROTECTED (local development only)",
				"expected_file", path,
				"hint", "run: "+ServiceName+" hash-password",
			)
			return &Auth{logger: logger}, nil
		}
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}

	user, hash, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" || hash == "" {
		return nil, fmt.Errorf("invalid auth file format (expected: username:hash)")
	}
	if _, err := parseHash(hash); err != nil {
		return nil, fmt.Errorf("invalid auth file hash: %w", err)
	}

	logger.Info("✅ Basic Auth enabled for appointment changes", "user", user, "file", path)
	return &Auth{user: user, hash: hash, logger: logger}, nil
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseHash(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("not an argon2id hash")
	}

	var p argon2Params
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return nil, fmt.Errorf("failed to parse hash parameters: %w", err)
	}
	if threads == 0 || threads > 255 {
		return nil, fmt.Errorf("invalid parallelism %d", threads)
	}
	p.threads = uint8(threads)

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("failed to decode hash: %w", err)
	}
	return &p, nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, hash string) (bool, error) {
	p, err := parseHash(hash)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, computed) == 1, nil
}

// Middleware enforces Basic Auth when credentials are loaded.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1

		passMatch := false
		if ok && userMatch {
			var err error
			passMatch, err = VerifyPassword(pass, a.hash)
			if err != nil {
				a.logger.Error("verifying password", "error", err)
			}
		}

		if !ok || !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", authRealm))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			a.logger.Warn("⚠️  failed auth attempt", "remote_addr", r.RemoteAddr, "user", user)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CreateAuthFile writes "username:hash" to path with mode 0400. An existing
// file is replaced only when overwrite is set or confirm returns true.
func CreateAuthFile(path, username, password string, overwrite bool, confirm func() bool) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite && (confirm == nil || !confirm()) {
			return ErrAuthFileExists
		}
		// The file is read-only, so it has to go before rewriting
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	content := fmt.Sprintf("%s:%s\n", username, hash)
	if err := os.WriteFile(path, []byte(content), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	return nil
}
