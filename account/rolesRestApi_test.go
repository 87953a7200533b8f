package account_test

import (
	"academy/account"
	"academy/authority"
	"academy/bizerror"
	"academy/common"
	"academy/session"
	"academy/testinfra"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("RolesRestApi", func() {
	var (
		router *gin.Engine
		sec    *session.Session
		t      = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	)
	BeforeEach(func() {
		sec = testinfra.BuildSession(10, 100, authority.RoleAdmin)
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterRolesRestApis(router, sessionInjector(&sec))
	})
	AfterEach(func() {
		account.QueryRolesFunc = account.QueryRoles
		account.CreateRoleFunc = account.CreateRole
		account.ReplaceRolePermissionsFunc = account.ReplaceRolePermissions
		account.GrantPermissionFunc = account.GrantPermission
		account.RevokePermissionFunc = account.RevokePermission
		account.DeleteRoleFunc = account.DeleteRole
	})

	It("should list the permission catalog", func() {
		req := httptest.NewRequest(http.MethodGet, account.PermissionsApiRoot, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		var specs []authority.PermissionSpec
		Expect(json.Unmarshal([]byte(body), &specs)).To(Succeed())
		Expect(specs).To(Equal(authority.Specs()))
	})

	It("should hide the catalog from students", func() {
		sec = testinfra.BuildSession(12, 100, authority.RoleStudent)
		req := httptest.NewRequest(http.MethodGet, account.PermissionsApiRoot, nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
	})

	Describe("HandleQueryRoles", func() {
		It("should pass the organization filter", func() {
			var query *account.RoleQuery
			account.QueryRolesFunc = func(q *account.RoleQuery, s *session.Session) ([]account.RoleDetail, error) {
				query = q
				return []account.RoleDetail{{Role: account.Role{ID: 5, Name: authority.RoleStudent, Description: "Student",
					OrganizationID: 100, CreatedAt: t}, Permissions: []string{authority.CourseView}}}, nil
			}
			req := httptest.NewRequest(http.MethodGet, account.RolesApiRoot+"?organizationId=100", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id": "5", "name": "ROLE_STUDENT", "description": "Student", "isSystemRole": false,
				"organizationId": "100", "createdAt": "2021-01-01T00:00:00Z", "permissions": ["course:view"]}]`))
			Expect(*query).To(Equal(account.RoleQuery{OrganizationID: 100}))
		})
	})

	Describe("HandleCreateRole", func() {
		It("should be able to create role successfully", func() {
			var payload *account.RoleCreation
			account.CreateRoleFunc = func(c *account.RoleCreation, s *session.Session) (*account.RoleDetail, error) {
				payload = c
				return &account.RoleDetail{Role: account.Role{ID: 6, Name: c.Name, OrganizationID: 100, CreatedAt: t},
					Permissions: c.Permissions}, nil
			}
			req := httptest.NewRequest(http.MethodPost, account.RolesApiRoot, common.StringReader(`
				{"name": "ROLE_REVIEWER", "permissions": ["course:view"]}
			`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id": "6", "name": "ROLE_REVIEWER", "description": "", "isSystemRole": false,
				"organizationId": "100", "createdAt": "2021-01-01T00:00:00Z", "permissions": ["course:view"]}`))
			Expect(*payload).To(Equal(account.RoleCreation{Name: "ROLE_REVIEWER", Permissions: []string{authority.CourseView}}))
		})

		It("should reject names not following the role convention", func() {
			req := httptest.NewRequest(http.MethodPost, account.RolesApiRoot, common.StringReader(`{"name": "reviewer"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code": "validation_error", "message": "validation failed",
				"data": {"name": "failed on the 'startswith' rule (ROLE_)"}}`))
		})
	})

	Describe("permission grants", func() {
		It("should replace grants", func() {
			var payload *account.RolePermissionsUpdating
			account.ReplaceRolePermissionsFunc = func(id types.ID, u *account.RolePermissionsUpdating, s *session.Session) (*account.RoleDetail, error) {
				payload = u
				return &account.RoleDetail{Role: account.Role{ID: id, CreatedAt: t}, Permissions: u.Permissions}, nil
			}
			req := httptest.NewRequest(http.MethodPut, account.RolesApiRoot+"/5/permissions",
				common.StringReader(`{"permissions": ["lesson:view"]}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(payload.Permissions).To(Equal([]string{authority.LessonView}))
		})

		It("should grant and revoke single permissions", func() {
			var granted, revoked string
			account.GrantPermissionFunc = func(id types.ID, permission string, s *session.Session) error {
				granted = permission
				return nil
			}
			account.RevokePermissionFunc = func(id types.ID, permission string, s *session.Session) error {
				revoked = permission
				return nil
			}

			req := httptest.NewRequest(http.MethodPut, account.RolesApiRoot+"/5/permissions/course:view", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			req = httptest.NewRequest(http.MethodDelete, account.RolesApiRoot+"/5/permissions/lesson:view", nil)
			status, _, _ = testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))

			Expect(granted).To(Equal(authority.CourseView))
			Expect(revoked).To(Equal(authority.LessonView))
		})
	})

	Describe("HandleDeleteRole", func() {
		It("should refuse system roles", func() {
			account.DeleteRoleFunc = func(id types.ID, s *session.Session) error {
				return bizerror.ErrForbidden
			}
			req := httptest.NewRequest(http.MethodDelete, account.RolesApiRoot+"/1", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
		})
	})
})
