package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Cookies carry a session token split in two: the readable "auth" cookie
// holds header and payload, the HttpOnly "sign" cookie the signature.
// Both are scoped to the path of the game they belong to.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func NewCookies(j *JWT) (*Cookies, error) {
	if j == nil {
		return nil, fmt.Errorf("cookies need a JWT config")
	}

	cookies := &Cookies{
		Domain:   os.Getenv("COOKIES_DOMAIN"),
		Secure:   os.Getenv("COOKIES_SECURE") != "0",
		SameSite: http.SameSiteStrictMode,
		jwt:      j,
	}

	sameSiteStr, ok := os.LookupEnv("COOKIES_SAMESITE")
	if !ok {
		return cookies, nil
	}
	switch strings.ToUpper(sameSiteStr) {
	case "DEFAULT":
		cookies.SameSite = http.SameSiteDefaultMode
	case "LAX":
		cookies.SameSite = http.SameSiteLaxMode
	case "STRICT":
		cookies.SameSite = http.SameSiteStrictMode
	case "NONE":
		cookies.SameSite = http.SameSiteNoneMode
	default:
		return nil, fmt.Errorf("unknown COOKIES_SAMESITE %q", sameSiteStr)
	}

	return cookies, nil
}

func (c *Cookies) JWT() *JWT {
	return c.jwt
}

func (c *Cookies) Clear(w http.ResponseWriter, path string) {
	for _, name := range []string{"auth", "sign"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     path,
			Value:    "delete",
			MaxAge:   -1,
			HttpOnly: name == "sign",
			Domain:   c.Domain,
			Secure:   c.Secure,
			SameSite: c.SameSite,
		})
	}
}

func (c *Cookies) Refresh(w http.ResponseWriter, path string, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := time.Now().Add(c.jwt.TokenLifetime())
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     path,
		Value:    header + "." + payload,
		Expires:  expires,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     path,
		Value:    signature,
		Expires:  expires,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

// ParseSessionClaims reads a bearer token, falling back to the cookie pair.
func (c *Cookies) ParseSessionClaims(r *http.Request) (*SessionClaims, error) {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return c.jwt.ParseSessionClaims(strings.TrimSpace(bearer))
	}
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	return c.jwt.ParseSessionClaims(authCookie.Value + "." + signCookie.Value)
}
