package sessions

import (
	"academy/account"
	"academy/authtoken"
	"academy/bizerror"
	"academy/domain"
	"academy/session"
	"net/http"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

var (
	AuthApiRoot = "/api/auth"

	VerifyCredentialsFunc = account.VerifyCredentials
	RegisterFunc          = account.Register
	FindUserFunc          = account.FindActiveUser
)

// TokenIssuer signs and revokes bearer tokens.
type TokenIssuer interface {
	Issue(s authtoken.Subject) (string, *authtoken.Claims, error)
	Revoke(tokenID string, expiresAt time.Time)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserView is the principal as presented to clients.
type UserView struct {
	ID           types.ID                      `json:"id"`
	Email        string                        `json:"email"`
	FirstName    string                        `json:"firstName"`
	LastName     string                        `json:"lastName"`
	Roles        []string                      `json:"roles"`
	Organization domain.OrganizationDescriptor `json:"organization"`
	Permissions  []string                      `json:"permissions"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

// RegisterSessionsRestApis registers login and register openly, the remaining routes behind middleWares.
func RegisterSessionsRestApis(r *gin.Engine, issuer TokenIssuer, throttle *LoginThrottle, middleWares ...gin.HandlerFunc) {
	if throttle == nil {
		throttle = NewLoginThrottle(0)
	}
	open := r.Group(AuthApiRoot)
	open.POST("login", throttle.Filter(), handleLogin(issuer))
	open.POST("register", HandleRegister)

	authenticated := r.Group(AuthApiRoot, middleWares...)
	authenticated.GET("me", HandleMe)
	authenticated.POST("refresh", handleRefresh(issuer))
	authenticated.DELETE("logout", handleLogout(issuer))
}

func handleLogin(issuer TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		login := LoginRequest{}
		if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
			panic(err)
		}
		user, err := VerifyCredentialsFunc(c.Request.Context(), login.Email, login.Password)
		if err != nil {
			panic(err)
		}
		resp, err := issueFor(c, issuer, user)
		if err != nil {
			panic(err)
		}
		logrus.WithFields(logrus.Fields{"user": user.ID.String(), "ip": c.ClientIP()}).Info("user logged in")
		c.JSON(http.StatusOK, resp)
	}
}

func HandleRegister(c *gin.Context) {
	payload := account.Registration{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	user, err := RegisterFunc(c.Request.Context(), &payload)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func handleLogout(issuer TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sec := session.FindSession(c)
		if sec == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		issuer.Revoke(sec.TokenID, sec.ExpiresAt)
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func issueFor(c *gin.Context, issuer TokenIssuer, user *account.User) (*TokenResponse, error) {
	subject, err := account.LoadSubjectFunc(c.Request.Context(), user)
	if err != nil {
		return nil, err
	}
	token, claims, err := issuer.Issue(*subject)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		User: UserView{
			ID: claims.UserID, Email: claims.Email, FirstName: claims.FirstName, LastName: claims.LastName,
			Roles: claims.Roles, Organization: claims.Org, Permissions: claims.Permissions,
		},
	}, nil
}
