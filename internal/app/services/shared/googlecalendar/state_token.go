package googlecalendar

import (
	"fmt"
	"time"

	"praxis-service/internal/pkg/exceptions"

	"github.com/golang-jwt/jwt/v4"
)

// stateCodec signs and verifies the OAuth state parameter. The callback
// endpoint is otherwise unauthenticated, so the state is the only carrier of
// the doctor identity between the authorization redirect and the callback.
type stateCodec struct {
	secret []byte
	ttl    time.Duration
}

func newStateCodec(secret string, ttl time.Duration) *stateCodec {
	return &stateCodec{secret: []byte(secret), ttl: ttl}
}

func (c *stateCodec) Encode(doctorID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"doctor_id": doctorID,
		"exp":       time.Now().Add(c.ttl).Unix(),
	})
	return token.SignedString(c.secret)
}

func (c *stateCodec) Decode(state string) (string, error) {
	token, err := jwt.Parse(state, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", exceptions.ErrInvalidOAuthState(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", exceptions.ErrInvalidOAuthState(fmt.Errorf("state claims are not readable"))
	}

	doctorID, ok := claims["doctor_id"].(string)
	if !ok || doctorID == "" {
		return "", exceptions.ErrInvalidOAuthState(fmt.Errorf("doctor_id claim missing"))
	}
	return doctorID, nil
}
