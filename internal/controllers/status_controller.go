package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus reports auth and queue state, the stand-in for the app's
// persistent status indicator.
func (a *API) GetStatus(c *gin.Context) {
	total, pending, err := a.Store.Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading store counts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"signed_in": a.Session.IsSignedIn(),
		"email":     a.Session.Email(),
		"tracking":  a.Loop.Running(),
		"total":     total,
		"pending":   pending,
	})
}
