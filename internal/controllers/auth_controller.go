package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/api"
)

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates against the backend, stores the session, starts the
// capture loop and immediately drains whatever was pending while signed out.
func (a *API) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds, err := a.Client.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) && authErr.Reason == api.AuthInvalidCredentials {
			c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := a.Session.SetSession(creds.Token, creds.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not persist session: " + err.Error()})
		return
	}

	if a.StartTracking != nil {
		if err := a.StartTracking(); err != nil {
			logrus.WithError(err).Error("Could not start capture loop after login.")
		}
	}

	// Everything captured while signed out uploads now. The request context
	// dies with this handler, so the drain runs on its own context.
	go func() {
		if err := a.Syncer.SyncPending(context.Background()); err != nil {
			logrus.WithError(err).Warn("Post-login sync failed, samples stay pending.")
		}
	}()

	c.JSON(http.StatusOK, gin.H{"email": a.Session.Email(), "signed_in": true})
}

// Logout clears the session and stops tracking. Captured samples stay in the
// store and retry after the next login.
func (a *API) Logout(c *gin.Context) {
	if err := a.Session.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not clear session: " + err.Error()})
		return
	}

	if a.StopTracking != nil {
		a.StopTracking()
	}

	c.JSON(http.StatusOK, gin.H{"signed_in": false})
}

// SyncNow triggers a drain of the pending queue.
func (a *API) SyncNow(c *gin.Context) {
	if err := a.Syncer.SyncPending(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed: " + err.Error()})
		return
	}

	_, pending, err := a.Store.Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading store counts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending})
}
