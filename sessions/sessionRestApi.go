package sessions

import (
	"academy/bizerror"
	"academy/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleMe presents the token snapshot, which may lag behind the stored grants until refresh.
func HandleMe(c *gin.Context) {
	sec := session.FindSession(c)
	if sec == nil {
		panic(bizerror.ErrUnauthenticated)
	}
	c.JSON(http.StatusOK, &UserView{
		ID: sec.Identity.ID, Email: sec.Identity.Email, FirstName: sec.Identity.FirstName, LastName: sec.Identity.LastName,
		Roles: append([]string{}, sec.Roles...), Organization: sec.Organization, Permissions: append([]string{}, sec.Perms...),
	})
}

// handleRefresh issues a token from the stored roles and grants and revokes the presented one.
// Users that could no longer log in are refused.
func handleRefresh(issuer TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sec := session.FindSession(c)
		if sec == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		user, err := FindUserFunc(c.Request.Context(), sec.Identity.ID)
		if err != nil {
			panic(err)
		}
		if !user.IsActive {
			panic(bizerror.ErrUnauthenticated)
		}
		resp, err := issueFor(c, issuer, user)
		if err != nil {
			panic(err)
		}
		issuer.Revoke(sec.TokenID, sec.ExpiresAt)
		c.JSON(http.StatusOK, resp)
	}
}
