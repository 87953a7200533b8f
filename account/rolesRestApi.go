package account

import (
	"academy/access"
	"academy/authority"
	"academy/common"
	"academy/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	RolesApiRoot       = "/api/roles"
	PermissionsApiRoot = "/api/permissions"

	QueryRolesFunc             = QueryRoles
	DetailRoleFunc             = DetailRole
	CreateRoleFunc             = CreateRole
	ReplaceRolePermissionsFunc = ReplaceRolePermissions
	GrantPermissionFunc        = GrantPermission
	RevokePermissionFunc       = RevokePermission
	DeleteRoleFunc             = DeleteRole
)

func RegisterRolesRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	roles := r.Group(RolesApiRoot, middleWares...)
	roles.Use(access.RequireRoles(authority.RoleAdmin, authority.RoleSuperAdmin))
	roles.GET("", HandleQueryRoles)
	roles.POST("", HandleCreateRole)
	roles.GET(":id", HandleDetailRole)
	roles.DELETE(":id", HandleDeleteRole)
	roles.PUT(":id/permissions", HandleReplaceRolePermissions)
	roles.PUT(":id/permissions/:permission", HandleGrantPermission)
	roles.DELETE(":id/permissions/:permission", HandleRevokePermission)

	permissions := r.Group(PermissionsApiRoot, middleWares...)
	permissions.Use(access.RequireRoles(authority.RoleAdmin, authority.RoleSuperAdmin))
	permissions.GET("", HandleQueryPermissions)
}

func HandleQueryPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, authority.Specs())
}

func HandleQueryRoles(c *gin.Context) {
	q := RoleQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	results, err := QueryRolesFunc(&q, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func HandleDetailRole(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailRoleFunc(id, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateRole(c *gin.Context) {
	payload := RoleCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateRoleFunc(&payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleReplaceRolePermissions(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := RolePermissionsUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := ReplaceRolePermissionsFunc(id, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleGrantPermission(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := GrantPermissionFunc(id, c.Param("permission"), session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleRevokePermission(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := RevokePermissionFunc(id, c.Param("permission"), session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleDeleteRole(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteRoleFunc(id, session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
