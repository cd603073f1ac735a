package controller

import (
	"net"
	"net/http"
	"strings"

	"webforge/logger"
	"webforge/web/entity"
	"webforge/web/service"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real client IP from proxy headers or the remote
// address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonObj sends a 200 response with an object in the Msg envelope.
func jsonObj(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, entity.Msg{Success: true, Obj: obj})
}

// jsonCreated sends a 201 response with the created object.
func jsonCreated(c *gin.Context, obj any) {
	c.JSON(http.StatusCreated, entity.Msg{Success: true, Obj: obj})
}

// jsonMsg sends a 200 response with a message only.
func jsonMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: msg})
}

// jsonErr translates a service error into its status code and envelope.
func jsonErr(c *gin.Context, msg string, err error) {
	status := service.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Warning(msg+":", err)
	}
	c.JSON(status, entity.Msg{
		Success: false,
		Msg:     msg + " (" + err.Error() + ")",
	})
}

// pureJsonMsg sends a message response with a custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}
