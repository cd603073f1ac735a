package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"webforge/web/service"
	"webforge/web/session"

	"github.com/gin-gonic/gin"
)

// CreateWebsiteForm is the website creation request body.
type CreateWebsiteForm struct {
	Name        string `json:"name" form:"name"`
	Subdomain   string `json:"subdomain" form:"subdomain"`
	Description string `json:"description" form:"description"`
}

// ChangeScriptForm names the template archive to deploy.
type ChangeScriptForm struct {
	ScriptName string `json:"scriptName" form:"scriptName"`
}

// WebsiteController handles the website lifecycle endpoints.
type WebsiteController struct {
	BaseController

	websiteService *service.WebsiteService
}

// NewWebsiteController creates the controller and registers its routes.
func NewWebsiteController(g *gin.RouterGroup, websiteService *service.WebsiteService) *WebsiteController {
	a := &WebsiteController{websiteService: websiteService}
	a.initRouter(g)
	return a
}

func (a *WebsiteController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/websites", a.checkLogin)

	g.GET("", a.getWebsites)
	g.GET("/:id", a.getWebsite)
	g.POST("", a.createWebsite)
	g.PATCH("/:id", a.updateWebsite)
	g.DELETE("/:id", a.deleteWebsite)
	g.POST("/:id/change-script", a.changeScript)
	g.GET("/:id/files", a.getFiles)
	g.GET("/:id/logs", a.getLogs)
}

func websiteId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid website id")
		return 0, false
	}
	return id, true
}

// getWebsites lists the caller's websites.
func (a *WebsiteController) getWebsites(c *gin.Context) {
	userId := session.GetLoginUserId(c)
	websites, err := a.websiteService.GetWebsites(userId)
	if err != nil {
		jsonErr(c, "failed to list websites", err)
		return
	}
	jsonObj(c, websites)
}

// getWebsite fetches one website, owner-scoped.
func (a *WebsiteController) getWebsite(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}
	userId := session.GetLoginUserId(c)
	website, err := a.websiteService.GetWebsite(userId, id)
	if err != nil {
		jsonErr(c, "failed to get website", err)
		return
	}
	jsonObj(c, website)
}

// createWebsite provisions the caller's website.
func (a *WebsiteController) createWebsite(c *gin.Context) {
	var form CreateWebsiteForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}

	userId := session.GetLoginUserId(c)
	website, err := a.websiteService.CreateWebsite(userId, form.Name, form.Subdomain, form.Description)
	if err != nil {
		jsonErr(c, "failed to create website", err)
		return
	}
	jsonCreated(c, website)
}

// updateWebsite applies a partial update. The patch type carries only
// mutable fields, so userId and subdomain in the body are ignored.
func (a *WebsiteController) updateWebsite(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}

	var patch service.WebsitePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid form data")
		return
	}

	userId := session.GetLoginUserId(c)
	website, err := a.websiteService.UpdateWebsite(userId, id, patch)
	if err != nil {
		jsonErr(c, "failed to update website", err)
		return
	}
	jsonObj(c, website)
}

// deleteWebsite removes the website row and its subtree.
func (a *WebsiteController) deleteWebsite(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}
	userId := session.GetLoginUserId(c)
	if err := a.websiteService.DeleteWebsite(userId, id); err != nil {
		jsonErr(c, "failed to delete website", err)
		return
	}
	jsonMsg(c, "website deleted")
}

// changeScript deploys the named template archive into the website subtree.
func (a *WebsiteController) changeScript(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}

	var form ChangeScriptForm
	if err := c.ShouldBind(&form); err != nil || form.ScriptName == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, "scriptName is required")
		return
	}

	userId := session.GetLoginUserId(c)
	website, err := a.websiteService.ApplyTemplate(userId, id, form.ScriptName)
	if err != nil {
		jsonErr(c, "failed to apply template", err)
		return
	}

	jsonObj(c, gin.H{
		"website": website,
		"url":     fmt.Sprintf("/sites/%d-%s/", website.UserId, website.Subdomain),
	})
}

// getFiles returns the recursive listing of the website subtree.
func (a *WebsiteController) getFiles(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}
	userId := session.GetLoginUserId(c)
	tree, err := a.websiteService.ListFiles(userId, id)
	if err != nil {
		jsonErr(c, "failed to list files", err)
		return
	}
	jsonObj(c, tree)
}

// getLogs returns the website's audit entries, newest first.
func (a *WebsiteController) getLogs(c *gin.Context) {
	id, ok := websiteId(c)
	if !ok {
		return
	}
	userId := session.GetLoginUserId(c)
	logs, err := a.websiteService.GetLogs(userId, id)
	if err != nil {
		jsonErr(c, "failed to get logs", err)
		return
	}
	jsonObj(c, logs)
}
