package echoweb

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// sessionClaims identify a browser session. The session id travels in the "jti" claim.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// cookieCodec signs and verifies the browser session cookie.
type cookieCodec struct {
	name    string
	key     []byte
	ttl     time.Duration
	issuer  string
	secure  bool
	nowFunc func() time.Time
}

func newCookieCodec(name, secret, issuer string, ttl time.Duration, secure bool) *cookieCodec {
	return &cookieCodec{
		name:    name,
		key:     []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		secure:  secure,
		nowFunc: time.Now,
	}
}

func (c *cookieCodec) sign(sid string) (string, time.Time, error) {
	now := c.nowFunc()
	exp := now.Add(c.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signing session cookie")
	}
	return ss, exp, nil
}

// read returns the session id carried by r, if its cookie is present and valid.
func (c *cookieCodec) read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(
		cookie.Value, &claims,
		func(*jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowFunc),
	)
	if err != nil || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

// write (re)issues the cookie for sid, sliding its expiry.
func (c *cookieCodec) write(w http.ResponseWriter, sid string) error {
	value, exp, err := c.sign(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
