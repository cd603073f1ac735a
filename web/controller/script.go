package controller

import (
	"net/http"
	"strconv"
	"strings"

	"webforge/web/service"

	"github.com/gin-gonic/gin"
)

// maxScriptSize caps template archive uploads at 50MB.
const maxScriptSize = 50 << 20

var archiveContentTypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/octet-stream":     true,
}

// ScriptController handles the template catalog endpoints.
type ScriptController struct {
	BaseController

	templateService *service.TemplateService
}

// NewScriptController creates the controller and registers its routes.
func NewScriptController(g *gin.RouterGroup, templateService *service.TemplateService) *ScriptController {
	a := &ScriptController{templateService: templateService}
	a.initRouter(g)
	return a
}

func (a *ScriptController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/scripts", a.checkLogin)

	g.GET("", a.getScripts)
	g.POST("/upload", a.uploadScript)
	g.DELETE("/:id", a.deleteScript)
}

// getScripts lists active templates with their live fileExists flag.
func (a *ScriptController) getScripts(c *gin.Context) {
	templates, err := a.templateService.GetTemplates()
	if err != nil {
		jsonErr(c, "failed to list templates", err)
		return
	}
	jsonObj(c, templates)
}

// uploadScript accepts a multipart zip upload and registers the template.
func (a *ScriptController) uploadScript(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "archive file is required")
		return
	}
	if header.Size > maxScriptSize {
		pureJsonMsg(c, http.StatusBadRequest, false, "archive exceeds the 50MB limit")
		return
	}
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !archiveContentTypes[contentType] {
		pureJsonMsg(c, http.StatusBadRequest, false, "only zip archives are accepted")
		return
	}

	file, err := header.Open()
	if err != nil {
		jsonErr(c, "failed to read upload", err)
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, ".zip")
	}

	tpl, err := a.templateService.Upload(
		name,
		c.PostForm("displayName"),
		c.PostForm("description"),
		c.PostForm("version"),
		header.Filename,
		file,
	)
	if err != nil {
		jsonErr(c, "failed to upload template", err)
		return
	}
	jsonCreated(c, tpl)
}

// deleteScript removes the template row and its backing archive.
func (a *ScriptController) deleteScript(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid template id")
		return
	}
	if err := a.templateService.Delete(id); err != nil {
		jsonErr(c, "failed to delete template", err)
		return
	}
	jsonMsg(c, "template deleted")
}
