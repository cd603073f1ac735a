// Package web provides the webforge panel HTTP server: routing, sessions,
// static serving of deployed sites and background job scheduling.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"

	"webforge/config"
	"webforge/logger"
	"webforge/storage"
	"webforge/util/common"
	"webforge/util/random"
	"webforge/web/controller"
	"webforge/web/job"
	"webforge/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Server is the panel web server with its controllers, services and
// scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	auth    *controller.AuthController
	website *controller.WebsiteController
	script  *controller.ScriptController
	profile *controller.ProfileController

	websiteService  *service.WebsiteService
	templateService *service.TemplateService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initServices wires the storage layer into the services from configuration.
func (s *Server) initServices() {
	sites := storage.NewSiteManager(config.GetSitesRoot())
	if err := sites.SweepStale(); err != nil {
		logger.Warning("failed to sweep stale site directories:", err)
	}
	store := storage.NewTemplateStore(config.GetTemplatesFolder())
	s.websiteService = service.NewWebsiteService(sites, store)
	s.templateService = service.NewTemplateService(store)
}

// initRouter initializes gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	secret := config.GetSessionSecret()
	if secret == "" {
		secret = random.Seq(32)
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge() * 60,
		HttpOnly: true,
	})
	engine.Use(sessions.Sessions(config.GetName(), store))

	api := engine.Group("/api")
	s.auth = controller.NewAuthController(api)
	s.website = controller.NewWebsiteController(api, s.websiteService)
	s.script = controller.NewScriptController(api, s.templateService)
	s.profile = controller.NewProfileController(api, config.GetAvatarsFolder())

	// Deployed subtrees are browsable under /sites/<userId>-<subdomain>/.
	engine.StaticFS("/sites", http.FS(os.DirFS(config.GetSitesRoot())))

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	s.cron.AddJob("@every 5m", job.NewCheckTemplateFilesJob(s.templateService))
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	s.initServices()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and its cron jobs.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }
