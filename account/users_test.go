package account_test

import (
	"academy/account"
	"academy/authority"
	"academy/bizerror"
	"academy/persistence"
	"academy/testinfra"
	"context"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func emails(details []account.UserDetail) []string {
	result := []string{}
	for _, d := range details {
		result = append(result, d.Email)
	}
	return result
}

var _ = Describe("Users", func() {
	var testDatabase *testinfra.TestDatabase
	BeforeEach(func() {
		testDatabase = setupAccountDatabase()
		createOtherOrganization()
	})
	AfterEach(func() {
		teardownAccountDatabase(testDatabase)
	})

	Describe("QueryUsers", func() {
		It("should list users of the own organization only", func() {
			users, err := account.QueryUsers(sessionOf("admin@demo.com"))
			Expect(err).To(BeNil())
			Expect(emails(users)).To(Equal([]string{"admin@demo.com", "instructor@demo.com", "student@demo.com"}))
			Expect(users[0].Roles).To(Equal([]string{authority.RoleAdmin}))
		})

		It("should list every user for super admin", func() {
			users, err := account.QueryUsers(sessionOf("super@system.local"))
			Expect(err).To(BeNil())
			Expect(emails(users)).To(ConsistOf("admin@demo.com", "instructor@demo.com", "student@demo.com",
				"super@system.local", "admin@other.com"))
		})

		It("should require user:view", func() {
			users, err := account.QueryUsers(sessionOf("student@demo.com"))
			Expect(users).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("QueryOrganizationUsers", func() {
		It("should list users of a visible organization", func() {
			users, err := account.QueryOrganizationUsers(otherOrganizationID, sessionOf("super@system.local"))
			Expect(err).To(BeNil())
			Expect(emails(users)).To(Equal([]string{"admin@other.com"}))
		})

		It("should conceal foreign organizations", func() {
			users, err := account.QueryOrganizationUsers(otherOrganizationID, sessionOf("admin@demo.com"))
			Expect(users).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})

		It("should forbid listing the system organization", func() {
			users, err := account.QueryOrganizationUsers(organizationOf("system").ID, sessionOf("super@system.local"))
			Expect(users).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("DetailUser", func() {
		It("should return users of the own organization", func() {
			u, err := account.DetailUser(userOf("student@demo.com").ID, sessionOf("admin@demo.com"))
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("student@demo.com"))
			Expect(u.Roles).To(Equal([]string{authority.RoleStudent}))
		})

		It("should conceal users of other organizations", func() {
			u, err := account.DetailUser(userOf("admin@other.com").ID, sessionOf("admin@demo.com"))
			Expect(u).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})

		It("should report absent users", func() {
			_, err := account.DetailUser(123456, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("CreateUser", func() {
		It("should create a user in the own organization, ignoring a requested organization", func() {
			u, err := account.CreateUser(&account.UserCreation{Email: " New.Teacher@Demo.com ", Password: "password1",
				FirstName: "New", LastName: "Teacher", Roles: []string{authority.RoleInstructor}, OrganizationID: otherOrganizationID},
				sessionOf("admin@demo.com"))
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("new.teacher@demo.com"))
			Expect(u.OrganizationID).To(Equal(organizationOf("demo-university").ID))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.Roles).To(Equal([]string{authority.RoleInstructor}))

			stored := userOf("new.teacher@demo.com")
			Expect(account.VerifyPassword(stored.Password, "password1")).To(BeTrue())
			subject, err := account.LoadSubject(context.Background(), stored)
			Expect(err).To(BeNil())
			Expect(subject.Permissions).To(ContainElement(authority.CourseCreate))
		})

		It("should let super admin choose the organization", func() {
			u, err := account.CreateUser(&account.UserCreation{Email: "student@other.com", Password: "password1",
				FirstName: "Sam", LastName: "Student", Roles: []string{authority.RoleStudent}, OrganizationID: otherOrganizationID},
				sessionOf("super@system.local"))
			Expect(err).To(BeNil())
			Expect(u.OrganizationID).To(Equal(otherOrganizationID))
		})

		It("should reject roles of other organizations or unknown roles", func() {
			creation := &account.UserCreation{Email: "x@demo.com", Password: "password1", FirstName: "Xx", LastName: "Yy",
				Roles: []string{"ROLE_UNKNOWN"}}
			_, err := account.CreateUser(creation, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(&bizerror.ErrInvalidRole{Role: "ROLE_UNKNOWN"}))
			Expect(count(&account.User{}, "email = ?", "x@demo.com")).To(BeZero())
		})

		It("should only let super admin grant the super admin role inside the system organization", func() {
			creation := &account.UserCreation{Email: "x@demo.com", Password: "password1", FirstName: "Xx", LastName: "Yy",
				Roles: []string{authority.RoleSuperAdmin}}
			_, err := account.CreateUser(creation, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(&bizerror.ErrInvalidRole{Role: authority.RoleSuperAdmin}))

			creation.OrganizationID = organizationOf("demo-university").ID
			_, err = account.CreateUser(creation, sessionOf("super@system.local"))
			Expect(err).To(Equal(&bizerror.ErrInvalidRole{Role: authority.RoleSuperAdmin}))

			creation.Email = "second@system.local"
			creation.OrganizationID = 0
			u, err := account.CreateUser(creation, sessionOf("super@system.local"))
			Expect(err).To(BeNil())
			Expect(u.Roles).To(Equal([]string{authority.RoleSuperAdmin}))
			Expect(u.OrganizationID).To(Equal(organizationOf("system").ID))
		})

		It("should reject duplicated email", func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "STUDENT@demo.com", Password: "password1",
				FirstName: "Bob", LastName: "Again"}, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(bizerror.ErrConflict))
		})

		It("should reject unknown target organization", func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "x@nowhere.com", Password: "password1",
				FirstName: "No", LastName: "Where", OrganizationID: 424242}, sessionOf("super@system.local"))
			Expect(err).To(Equal(bizerror.NewErrValidation("organizationId", "organization not found")))
		})
	})

	Describe("UpdateUser", func() {
		It("should update profile, password and roles", func() {
			student := userOf("student@demo.com")
			inactive := false
			roles := []string{authority.RoleInstructor, authority.RoleStudent}
			u, err := account.UpdateUser(student.ID, &account.UserUpdating{Email: "bob@demo.com", Password: "newpassword",
				FirstName: "Robert", LastName: "Student", IsActive: &inactive, Roles: &roles}, sessionOf("admin@demo.com"))
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("bob@demo.com"))
			Expect(u.FirstName).To(Equal("Robert"))
			Expect(u.IsActive).To(BeFalse())
			Expect(u.Roles).To(Equal([]string{authority.RoleInstructor, authority.RoleStudent}))
			Expect(account.VerifyPassword(userOf("bob@demo.com").Password, "newpassword")).To(BeTrue())
		})

		It("should keep roles and password when absent", func() {
			student := userOf("student@demo.com")
			u, err := account.UpdateUser(student.ID, &account.UserUpdating{Email: "student@demo.com",
				FirstName: "Bob", LastName: "Renamed"}, sessionOf("admin@demo.com"))
			Expect(err).To(BeNil())
			Expect(u.Roles).To(Equal([]string{authority.RoleStudent}))
			Expect(u.IsActive).To(BeTrue())
			Expect(account.VerifyPassword(userOf("student@demo.com").Password, "student123")).To(BeTrue())
		})

		It("should conceal users of other organizations", func() {
			_, err := account.UpdateUser(userOf("admin@other.com").ID, &account.UserUpdating{Email: "admin@other.com",
				FirstName: "Hacked", LastName: "Name"}, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(bizerror.ErrNotFound))
			Expect(userOf("admin@other.com").FirstName).To(Equal("Olga"))
		})

		It("should reject email of another user", func() {
			_, err := account.UpdateUser(userOf("student@demo.com").ID, &account.UserUpdating{Email: "admin@demo.com",
				FirstName: "Bob", LastName: "Student"}, sessionOf("admin@demo.com"))
			Expect(err).To(Equal(bizerror.ErrConflict))
		})
	})

	Describe("DeleteUser", func() {
		It("should delete the user and its bindings but keep roles", func() {
			student := userOf("student@demo.com")
			Expect(account.DeleteUser(student.ID, sessionOf("admin@demo.com"))).To(Succeed())
			Expect(count(&account.User{}, "id = ?", student.ID)).To(BeZero())
			Expect(count(&account.UserRoleBinding{}, "user_id = ?", student.ID)).To(BeZero())
			Expect(count(&account.Role{}, "name = ? AND organization_id = ?", authority.RoleStudent, student.OrganizationID)).To(Equal(1))
		})

		It("should forbid deleting oneself", func() {
			admin := userOf("admin@demo.com")
			Expect(account.DeleteUser(admin.ID, sessionOf("admin@demo.com"))).To(Equal(bizerror.ErrForbidden))
		})

		It("should conceal users of other organizations", func() {
			Expect(account.DeleteUser(userOf("admin@other.com").ID, sessionOf("admin@demo.com"))).To(Equal(bizerror.ErrNotFound))
		})
	})

	Describe("VerifyCredentials", func() {
		It("should accept valid credentials", func() {
			u, err := account.VerifyCredentials(context.Background(), "Admin@Demo.com", "admin123")
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("admin@demo.com"))
		})

		It("should reject unknown email, wrong password and inactive accounts", func() {
			_, err := account.VerifyCredentials(context.Background(), "nobody@demo.com", "admin123")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
			_, err = account.VerifyCredentials(context.Background(), "admin@demo.com", "wrong")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))

			db := persistence.ActiveDataSourceManager.GormDB(context.Background())
			Expect(db.Model(&account.User{}).Where("email = ?", "student@demo.com").Update("is_active", false).Error).To(BeNil())
			_, err = account.VerifyCredentials(context.Background(), "student@demo.com", "student123")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})

		It("should reject users of inactive organizations", func() {
			db := persistence.ActiveDataSourceManager.GormDB(context.Background())
			Expect(db.Table("organizations").Where("id = ?", otherOrganizationID).Update("is_active", false).Error).To(BeNil())
			_, err := account.VerifyCredentials(context.Background(), "admin@other.com", "admin1234")
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})
	})

	Describe("FindActiveUser", func() {
		It("should load active users of active organizations", func() {
			u, err := account.FindActiveUser(context.Background(), userOf("admin@other.com").ID)
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("admin@other.com"))
		})

		It("should reject unknown and inactive users", func() {
			_, err := account.FindActiveUser(context.Background(), 424242)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))

			student := userOf("student@demo.com")
			db := persistence.ActiveDataSourceManager.GormDB(context.Background())
			Expect(db.Model(&account.User{}).Where("id = ?", student.ID).Update("is_active", false).Error).To(BeNil())
			_, err = account.FindActiveUser(context.Background(), student.ID)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})

		It("should reject users of inactive or deleted organizations", func() {
			admin := userOf("admin@other.com")
			db := persistence.ActiveDataSourceManager.GormDB(context.Background())
			Expect(db.Table("organizations").Where("id = ?", otherOrganizationID).Update("is_active", false).Error).To(BeNil())
			_, err := account.FindActiveUser(context.Background(), admin.ID)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))

			Expect(db.Exec("DELETE FROM organizations WHERE id = ?", otherOrganizationID).Error).To(BeNil())
			_, err = account.FindActiveUser(context.Background(), admin.ID)
			Expect(err).To(Equal(bizerror.ErrUnauthenticated))
		})
	})
})
