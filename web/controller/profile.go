package controller

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"webforge/web/service"
	"webforge/web/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxAvatarSize caps profile picture uploads at 5MB.
const maxAvatarSize = 5 << 20

// ProfileController handles profile picture uploads.
type ProfileController struct {
	BaseController

	userService service.UserService
	avatarsDir  string
}

// NewProfileController creates the controller and registers its routes.
func NewProfileController(g *gin.RouterGroup, avatarsDir string) *ProfileController {
	a := &ProfileController{avatarsDir: avatarsDir}
	a.initRouter(g)
	return a
}

func (a *ProfileController) initRouter(g *gin.RouterGroup) {
	g.POST("/profile-picture", a.checkLogin, a.uploadProfilePicture)
}

// uploadProfilePicture stores the image under a generated name and records
// it as the caller's avatar.
func (a *ProfileController) uploadProfilePicture(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "image file is required")
		return
	}
	if header.Size > maxAvatarSize {
		pureJsonMsg(c, http.StatusBadRequest, false, "image exceeds the 5MB limit")
		return
	}
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		pureJsonMsg(c, http.StatusBadRequest, false, "only image uploads are accepted")
		return
	}

	if err := os.MkdirAll(a.avatarsDir, 0o755); err != nil {
		jsonErr(c, "failed to store image", err)
		return
	}
	fileName := uuid.New().String() + filepath.Ext(header.Filename)
	if err := c.SaveUploadedFile(header, filepath.Join(a.avatarsDir, fileName)); err != nil {
		jsonErr(c, "failed to store image", err)
		return
	}

	userId := session.GetLoginUserId(c)
	if err := a.userService.UpdateAvatar(userId, fileName); err != nil {
		jsonErr(c, "failed to update avatar", err)
		return
	}

	jsonObj(c, gin.H{"avatar": fileName})
}
