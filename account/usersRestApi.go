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
	UsersApiRoot = "/api/users"

	QueryUsersFunc = QueryUsers
	DetailUserFunc = DetailUser
	CreateUserFunc = CreateUser
	UpdateUserFunc = UpdateUser
	DeleteUserFunc = DeleteUser
)

func RegisterUsersRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group(UsersApiRoot, middleWares...)
	users.Use(access.RequireRoles(authority.RoleAdmin, authority.RoleSuperAdmin))
	users.GET("", HandleQueryUsers)
	users.POST("", HandleCreateUser)
	users.GET(":id", HandleDetailUser)
	users.PUT(":id", HandleUpdateUser)
	users.DELETE(":id", HandleDeleteUser)
}

func HandleQueryUsers(c *gin.Context) {
	results, err := QueryUsersFunc(session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func HandleDetailUser(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailUserFunc(id, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateUser(c *gin.Context) {
	payload := UserCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateUserFunc(&payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateUser(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := UserUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateUserFunc(id, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteUser(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteUserFunc(id, session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
