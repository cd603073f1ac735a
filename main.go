package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"webforge/config"
	"webforge/database"
	"webforge/logger"
	"webforge/web"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
)

func main() {
	_ = godotenv.Load()

	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
	defer logger.CloseLogger()

	if err := database.InitDB(config.GetDBPath()); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	server := web.NewServer()
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("reloading server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}
