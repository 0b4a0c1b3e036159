// internal/common/auth/password.go
package auth

import (
	"crypto/subtle"

	"betfunnels-copy/internal/common/errors"
)

// PasswordGate guards the tool with one shared secret. It is not a user
// system: the comparison is plain equality.
type PasswordGate struct {
	secret string
}

func NewPasswordGate(secret string) *PasswordGate {
	return &PasswordGate{secret: secret}
}

func (g *PasswordGate) Configured() bool {
	return g != nil && g.secret != ""
}

// Check returns a configuration error when no secret is set and an auth
// error when candidate does not match.
func (g *PasswordGate) Check(candidate string) error {
	if !g.Configured() {
		err := errors.NewConfigurationError("BETFUNNELS_APP_PASSWORD not set")
		err.Message = "Senha não configurada."
		return err
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) != 1 {
		return errors.NewAuthError()
	}
	return nil
}
