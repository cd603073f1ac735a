// Package config resolves panel configuration from the environment with an
// optional TOML file override (WEBFORGE_CONFIG or ./webforge.toml).
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// fileConfig mirrors the optional webforge.toml override file.
type fileConfig struct {
	Listen          string `toml:"listen"`
	Port            int    `toml:"port"`
	DBFolder        string `toml:"db_folder"`
	LogFolder       string `toml:"log_folder"`
	SitesRoot       string `toml:"sites_root"`
	TemplatesFolder string `toml:"templates_folder"`
	AvatarsFolder   string `toml:"avatars_folder"`
	SessionSecret   string `toml:"session_secret"`
	SessionMaxAge   int    `toml:"session_max_age"`
}

var (
	fileCfg     fileConfig
	fileCfgOnce sync.Once
)

func fromFile() *fileConfig {
	fileCfgOnce.Do(func() {
		path := os.Getenv("WEBFORGE_CONFIG")
		if path == "" {
			path = "webforge.toml"
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		if err := toml.Unmarshal(data, &fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "invalid config file %s: %v\n", path, err)
		}
	})
	return &fileCfg
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("WEBFORGE_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("WEBFORGE_DEBUG") == "true"
}

func GetListen() string {
	return stringValue("WEBFORGE_LISTEN", fromFile().Listen, "")
}

func GetPort() int {
	if v := os.Getenv("WEBFORGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			return port
		}
	}
	if fromFile().Port > 0 {
		return fromFile().Port
	}
	return 8080
}

func GetDBFolderPath() string {
	return stringValue("WEBFORGE_DB_FOLDER", fromFile().DBFolder, "data")
}

func GetDBPath() string {
	return filepath.Join(GetDBFolderPath(), GetName()+".db")
}

func GetLogFolder() string {
	return stringValue("WEBFORGE_LOG_FOLDER", fromFile().LogFolder, "data/log")
}

// GetSitesRoot is the root under which every website's subtree lives.
func GetSitesRoot() string {
	return stringValue("WEBFORGE_SITES_ROOT", fromFile().SitesRoot, "data/sites")
}

// GetTemplatesFolder is the flat directory of uploaded template archives.
func GetTemplatesFolder() string {
	return stringValue("WEBFORGE_TEMPLATES_FOLDER", fromFile().TemplatesFolder, "data/templates")
}

// GetAvatarsFolder is the flat directory of uploaded profile pictures.
func GetAvatarsFolder() string {
	return stringValue("WEBFORGE_AVATARS_FOLDER", fromFile().AvatarsFolder, "data/avatars")
}

// GetSessionSecret returns the cookie-store secret, empty if unset. The web
// server falls back to a random per-process secret.
func GetSessionSecret() string {
	return stringValue("WEBFORGE_SESSION_SECRET", fromFile().SessionSecret, "")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func GetSessionMaxAge() int {
	if v := os.Getenv("WEBFORGE_SESSION_MAX_AGE"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			return minutes
		}
	}
	if fromFile().SessionMaxAge > 0 {
		return fromFile().SessionMaxAge
	}
	return 60
}

func stringValue(envKey, fileValue, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}
