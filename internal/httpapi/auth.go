package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classcheck/internal/auth"
	"classcheck/internal/user"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}

	u, err := a.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.metrics.Login("failed")
		switch {
		case errors.Is(err, user.ErrNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgUserNotFound})
		case errors.Is(err, user.ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": msgBadPassword})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		}
		return
	}

	token, _, err := auth.Issue(u.ID, u.Username, u.Role, a.cfg.JWTIssuer, a.cfg.JWTSecret, a.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	a.metrics.Login("ok")

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(a.cfg.TokenTTL.Seconds()), "/", "", a.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": msgLoginOK})
}

func (a *API) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", a.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": msgLogoutOK})
}

func (a *API) me(c *gin.Context) {
	u := auth.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
