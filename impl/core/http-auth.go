package core

import (
	"crypto/subtle"
	"fmt"
	"weatherbot/entity"
)

// AuthenticateByToken guards the ops API with the single configured
// bearer token.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("token not provided")
	}
	if c.authToken == "" {
		return nil, fmt.Errorf("api token not configured")
	}
	if subtle.ConstantTimeCompare([]byte(c.authToken), []byte(token)) != 1 {
		return nil, fmt.Errorf("invalid token")
	}
	return &entity.UserAuth{Name: "admin", Token: token}, nil
}
