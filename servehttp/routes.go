package servehttp

import (
	"academy/account"
	"academy/bizerror"
	"academy/common"
	"academy/domain/course"
	"academy/domain/namespace"
	"academy/infra/metrics"
	"academy/infra/tracing"
	"academy/session"
	"academy/sessions"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenService verifies presented bearer tokens and issues new ones.
type TokenService interface {
	session.Authenticator
	sessions.TokenIssuer
}

// BuildEngine assembles every REST api of the service. Apart from login, register and the
// operational endpoints, each route requires a valid bearer token.
func BuildEngine(tokens TokenService, throttle *sessions.LoginThrottle) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), metrics.Instrument(), tracing.TracingIngress(), bizerror.ErrorHandling())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())

	authFilter := session.BearerAuthFilter(tokens)

	sessions.RegisterSessionsRestApis(engine, tokens, throttle, authFilter)
	account.RegisterUsersRestApis(engine, authFilter)
	account.RegisterRolesRestApis(engine, authFilter)
	namespace.RegisterOrganizationsRestApis(engine, authFilter)
	course.RegisterCoursesRestApis(engine, authFilter)

	return engine
}
