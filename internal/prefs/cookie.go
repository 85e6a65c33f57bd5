package prefs

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying signed preferences.
const CookieName = "ghqa"

const cookieTTL = 365 * 24 * time.Hour

type cookieClaims struct {
	URL       string `json:"ghqa:url,omitempty"`
	Questions *int   `json:"ghqa:n,omitempty"`
	jwt.RegisteredClaims
}

// CookieJar signs preferences into an HS256 JWT cookie so the browser keeps
// them between visits.
type CookieJar struct {
	secret []byte
	secure bool
	logger *zap.Logger
}

// NewCookieJar creates a jar signing with secret.
func NewCookieJar(secret []byte, secure bool, logger *zap.Logger) *CookieJar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CookieJar{secret: secret, secure: secure, logger: logger}
}

// Bind returns a Store reading from r and writing to w.
func (j *CookieJar) Bind(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{jar: j, w: w, r: r}
}

func (j *CookieJar) sign(url string, n int) (string, error) {
	now := time.Now()
	claims := cookieClaims{
		URL:       url,
		Questions: &n,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *CookieJar) parse(value string) (*cookieClaims, error) {
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type cookieStore struct {
	jar *CookieJar
	w   http.ResponseWriter
	r   *http.Request
}

func (c *cookieStore) Save(url string, n int) {
	if c.w == nil {
		return
	}
	value, err := c.jar.sign(url, n)
	if err != nil {
		c.jar.logger.Debug("prefs cookie sign failed", zap.Error(err))
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieTTL / time.Second),
		HttpOnly: true,
		Secure:   c.jar.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieStore) Restore() Prefs {
	if c.r == nil {
		return Prefs{}
	}
	cookie, err := c.r.Cookie(CookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			c.jar.logger.Debug("prefs cookie read failed", zap.Error(err))
		}
		return Prefs{}
	}
	claims, err := c.jar.parse(cookie.Value)
	if err != nil {
		c.jar.logger.Debug("prefs cookie rejected", zap.Error(err))
		return Prefs{}
	}
	return build(claims.URL, claims.Questions)
}
