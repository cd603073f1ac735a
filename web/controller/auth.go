package controller

import (
	"net/http"

	"webforge/config"
	"webforge/logger"
	"webforge/web/service"
	"webforge/web/session"

	"github.com/gin-gonic/gin"
)

// RegisterForm is the registration request body.
type RegisterForm struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"displayName" form:"displayName"`
}

// LoginForm is the login request body.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AuthController handles registration and session login/logout.
type AuthController struct {
	userService service.UserService
}

// NewAuthController creates the controller and registers its routes.
func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.POST("/register", a.register)
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)
}

// register creates an account and logs it straight in.
func (a *AuthController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}

	user, err := a.userService.Register(form.Username, form.Email, form.Password, form.DisplayName)
	if err != nil {
		jsonErr(c, "registration failed", err)
		return
	}

	if err := session.SetLoginUser(c, user, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("unable to save session:", err)
	}

	logger.Infof("registered account %q from %s", user.Username, getRemoteIp(c))
	jsonCreated(c, user)
}

// login verifies credentials and creates the session.
func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}
	if form.Username == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, "username and password are required")
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	if user == nil {
		logger.Warningf("failed login for %q from %s", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusUnauthorized, false, "wrong username or password")
		return
	}

	if err := session.SetLoginUser(c, user, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("unable to save session:", err)
		return
	}

	logger.Infof("%s logged in from %s", user.Username, getRemoteIp(c))
	jsonObj(c, user)
}

// logout clears the session.
func (a *AuthController) logout(c *gin.Context) {
	if userId := session.GetLoginUserId(c); userId > 0 {
		logger.Infof("user %d logged out", userId)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	jsonMsg(c, "logged out")
}
