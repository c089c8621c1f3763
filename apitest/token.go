package apitest

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/bobinette/atelier/errors"
)

// tokenEncoder signs and checks the access tokens of the fake.
type tokenEncoder struct {
	key      []byte
	lifetime time.Duration
}

func (e tokenEncoder) Encode(userID string) (string, error) {
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   userID,
		ExpiresAt: time.Now().Add(e.lifetime).Unix(),
		Issuer:    "apitest",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.key)
}

// Decode returns the user the bearer token was issued to.
func (e tokenEncoder) Decode(bearer string) (string, error) {
	claims := jwt.StandardClaims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, func(token *jwt.Token) (interface{}, error) {
		return e.key, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.Subject == "" {
		return "", errors.New("could not get claims")
	}
	return claims.Subject, nil
}
