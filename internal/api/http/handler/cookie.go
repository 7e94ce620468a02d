package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/account-service/internal/model"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieOptions controls how tokens are delivered to browsers.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (o CookieOptions) set(c *gin.Context, tokens model.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, tokens.AccessToken, int(o.AccessTTL.Seconds()), "/", "", o.Secure, true)
	c.SetCookie(RefreshTokenCookie, tokens.RefreshToken, int(o.RefreshTTL.Seconds()), "/", "", o.Secure, true)
}

func (o CookieOptions) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", o.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", o.Secure, true)
}
