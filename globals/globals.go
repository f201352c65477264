package globals

import (
	"context"
	"errors"
	"os"
)

var JwtSecret []byte

// LoadSecret reads JWT_SECRET from the environment. The server must not start
// without it, so main treats an error here as fatal.
func LoadSecret() error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	JwtSecret = []byte(secret)
	return nil
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const RoleKey ContextKey = "role"

var Ctx = context.Background()
