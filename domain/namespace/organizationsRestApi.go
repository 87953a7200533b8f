package namespace

import (
	"academy/access"
	"academy/account"
	"academy/authority"
	"academy/common"
	"academy/domain"
	"academy/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	OrganizationsApiRoot = "/api/organizations"

	QueryOrganizationsFunc     = QueryOrganizations
	DetailOrganizationFunc     = DetailOrganization
	CreateOrganizationFunc     = CreateOrganization
	UpdateOrganizationFunc     = UpdateOrganization
	DeleteOrganizationFunc     = DeleteOrganization
	QueryOrganizationUsersFunc = account.QueryOrganizationUsers
)

func RegisterOrganizationsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	orgs := r.Group(OrganizationsApiRoot, middleWares...)
	orgs.Use(access.RequireRoles(authority.RoleSuperAdmin, authority.RoleAdmin))
	orgs.GET("", HandleQueryOrganizations)
	orgs.POST("", access.RequireRoles(authority.RoleSuperAdmin), HandleCreateOrganization)
	orgs.GET(":id", HandleDetailOrganization)
	orgs.PUT(":id", HandleUpdateOrganization)
	orgs.DELETE(":id", access.RequireRoles(authority.RoleSuperAdmin), HandleDeleteOrganization)
	orgs.GET(":id/users", HandleQueryOrganizationUsers)
}

func HandleQueryOrganizations(c *gin.Context) {
	result, err := QueryOrganizationsFunc(session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDetailOrganization(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailOrganizationFunc(id, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateOrganization(c *gin.Context) {
	payload := domain.OrganizationCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateOrganizationFunc(&payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateOrganization(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.OrganizationUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateOrganizationFunc(id, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteOrganization(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteOrganizationFunc(id, session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleQueryOrganizationUsers(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := QueryOrganizationUsersFunc(id, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
