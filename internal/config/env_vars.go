package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	logLevelVar   = "LOG_LEVEL"
	timeoutVar    = "REQUEST_TIMEOUT"
	maxBodyVar    = "MAX_BODY_BYTES"
	productionEnv = "production"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetLogLevel() string
	GetRequestTimeout() time.Duration
	GetMaxBodyBytes() int64
}

type EnvVars struct {
	src *source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.src.get(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Pizza Delivery")
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

// IsProduction controls the Secure attribute of session cookies.
func (e EnvVars) IsProduction() bool {
	return strings.EqualFold(e.GetEnv(), productionEnv)
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelVar, "info")
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	return e.src.getDuration(timeoutVar, 10*time.Second)
}

func (e EnvVars) GetMaxBodyBytes() int64 {
	return int64(e.src.getInt(maxBodyVar, 1<<20))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
