package session

import (
	"academy/bizerror"
	"strings"

	"github.com/gin-gonic/gin"
)

const KeySecCtx = "SecCtx"

// Authenticator turns a presented bearer token into a session.
type Authenticator interface {
	Authenticate(token string) (*Session, error)
}

// FindSession returns the session of the request bound to the request context, nil when absent.
func FindSession(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return nil
	}
	s := s0.Clone()
	if ctx.Request != nil {
		s.Context = ctx.Request.Context()
	}
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}

// BearerToken extracts the credential of an "Authorization: Bearer <token>" header.
func BearerToken(ctx *gin.Context) string {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func BearerAuthFilter(authenticator Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := BearerToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		s, err := authenticator.Authenticate(token)
		if err != nil || s == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}
