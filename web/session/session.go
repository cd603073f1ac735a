// Package session stores the logged-in user's id in the cookie session.
package session

import (
	"webforge/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginUserId = "LOGIN_USER_ID"

// SetLoginUser records the user's id in the session with the given lifetime
// in seconds, in a single save. Only the id goes into the cookie; everything
// else about the user stays server-side.
func SetLoginUser(c *gin.Context, user *model.User, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	s.Set(loginUserId, user.Id)
	return s.Save()
}

// GetLoginUserId returns the logged-in user's id, 0 when not logged in.
func GetLoginUserId(c *gin.Context) int {
	s := sessions.Default(c)
	if id, ok := s.Get(loginUserId).(int); ok {
		return id
	}
	return 0
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUserId(c) > 0
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
