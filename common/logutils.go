package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{}
	logger.AddHook(&DefaultFieldsHook{})
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT (text|json) to the standard logger.
func ConfigureLogging() {
	logger := logrus.StandardLogger()
	if EnvString("LOG_FORMAT", "text") == "json" {
		logger.Formatter = &logrus.JSONFormatter{}
	}
	level, err := logrus.ParseLevel(EnvString("LOG_LEVEL", "info"))
	if err != nil {
		logrus.Warnf("invalid log level: %v", err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func GetServiceName() string {
	return EnvString("SERVICE_NAME", "academy")
}

var serviceInstance = func() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}()

func GetServiceInstance() string {
	return serviceInstance
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}
