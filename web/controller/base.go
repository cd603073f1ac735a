// Package controller provides the HTTP handlers of the webforge panel API.
package controller

import (
	"net/http"

	"webforge/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication check shared by all
// session-protected controllers.
type BaseController struct{}

// checkLogin aborts the request with 401 when no user is logged in.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		pureJsonMsg(c, http.StatusUnauthorized, false, "please log in first")
		c.Abort()
		return
	}
	c.Next()
}
