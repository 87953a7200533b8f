package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerprom "github.com/uber/jaeger-lib/metrics/prometheus"
)

type jaegerLogger struct{}

func (jaegerLogger) Error(msg string) {
	logrus.WithField("component", "jaeger").Error(msg)
}

func (jaegerLogger) Infof(msg string, args ...interface{}) {
	logrus.WithField("component", "jaeger").Infof(msg, args...)
}

// InitGlobalTracer builds a jaeger tracer from the JAEGER_* environment and installs it as the
// opentracing global tracer. Tracer metrics are registered into registerer.
// With JAEGER_DISABLED=true the noop tracer is installed.
func InitGlobalTracer(serviceName string, registerer prometheus.Registerer) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(
		jaegercfg.Logger(jaegerLogger{}),
		jaegercfg.Metrics(jaegerprom.New(jaegerprom.WithRegisterer(registerer))),
	)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.WithFields(logrus.Fields{"service": cfg.ServiceName, "disabled": cfg.Disabled}).Info("tracer initialized")
	return closer, nil
}
