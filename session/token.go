package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// expiry reads the exp claim of a JWT access token. The signature is not
// checked: the client does not hold the key, and the value is only used
// to tell the user when the session will lapse.
func expiry(raw string) (time.Time, bool) {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.ExpiresAt, 0), true
}
