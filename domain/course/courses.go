package course

import (
	"academy/access"
	"academy/account"
	"academy/authority"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"academy/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var idWorker = idgen.NewWorker()

// QueryCourses lists the courses of the principal's organization, all courses for super admins.
func QueryCourses(sec *session.Session) ([]domain.CourseDetail, error) {
	if err := access.AssertPermissions(sec, authority.CourseView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	q := db.Order("created_at DESC, id DESC")
	if orgID, scoped := access.OrganizationFilter(sec); scoped {
		q = q.Where("organization_id = ?", orgID)
	}
	var courses []domain.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return withDetails(db, courses)
}

func DetailCourse(id types.ID, sec *session.Session) (*domain.CourseDetail, error) {
	if err := access.AssertPermissions(sec, authority.CourseView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	c, err := findVisibleCourse(db, id, sec)
	if err != nil {
		return nil, err
	}
	details, err := withDetails(db, []domain.Course{*c})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// CreateCourse creates a course in the principal's organization, taught by the principal.
func CreateCourse(c *domain.CourseCreation, sec *session.Session) (*domain.CourseDetail, error) {
	if err := access.AssertRoles(sec, authority.RoleInstructor, authority.RoleAdmin); err != nil {
		return nil, err
	}
	if err := access.AssertPermissions(sec, authority.CourseCreate); err != nil {
		return nil, err
	}
	now := time.Now()
	record := domain.Course{ID: idgen.NextID(idWorker), Title: c.Title, Description: c.Description,
		OrganizationID: sec.Organization.ID, InstructorID: sec.Identity.ID, CreatedAt: now, UpdatedAt: now}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Create(&record).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"course": record.ID.String(), "organization": record.OrganizationID.String()}).Info("course created")
	return &domain.CourseDetail{Course: record, InstructorName: sec.Identity.DisplayName()}, nil
}

func UpdateCourse(id types.ID, u *domain.CourseUpdating, sec *session.Session) (*domain.CourseDetail, error) {
	if err := access.AssertRoles(sec, authority.RoleInstructor, authority.RoleAdmin, authority.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if err := access.AssertPermissions(sec, authority.CourseEdit); err != nil {
		return nil, err
	}
	var detail *domain.CourseDetail
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		c, err := findVisibleCourse(tx, id, sec)
		if err != nil {
			return err
		}
		changes := map[string]interface{}{"title": u.Title, "description": u.Description, "updated_at": time.Now()}
		if err := tx.Model(&domain.Course{}).Where("id = ?", c.ID).Updates(changes).Error; err != nil {
			return err
		}
		updated := domain.Course{}
		if err := tx.Where("id = ?", c.ID).First(&updated).Error; err != nil {
			return err
		}
		details, err := withDetails(tx, []domain.Course{updated})
		if err != nil {
			return err
		}
		detail = &details[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteCourse removes the course with its lessons.
func DeleteCourse(id types.ID, sec *session.Session) error {
	if err := access.AssertRoles(sec, authority.RoleInstructor, authority.RoleAdmin, authority.RoleSuperAdmin); err != nil {
		return err
	}
	if err := access.AssertPermissions(sec, authority.CourseDelete); err != nil {
		return err
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		c, err := findVisibleCourse(tx, id, sec)
		if err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&domain.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", c.ID).Delete(&domain.Course{}).Error
	})
}

func findVisibleCourse(db *gorm.DB, id types.ID, sec *session.Session) (*domain.Course, error) {
	c := domain.Course{}
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	if err := access.AssertVisible(sec, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// withDetails derives difficulty and lesson count from the lessons and resolves instructor names.
func withDetails(db *gorm.DB, courses []domain.Course) ([]domain.CourseDetail, error) {
	details := []domain.CourseDetail{}
	if len(courses) == 0 {
		return details, nil
	}
	courseIds := make([]types.ID, 0, len(courses))
	instructorIds := make([]types.ID, 0, len(courses))
	for _, c := range courses {
		courseIds = append(courseIds, c.ID)
		instructorIds = append(instructorIds, c.InstructorID)
	}

	var lessons []domain.Lesson
	if err := db.Where("course_id IN (?)", courseIds).Find(&lessons).Error; err != nil {
		return nil, err
	}
	grouped := map[types.ID][]domain.Lesson{}
	for _, l := range lessons {
		grouped[l.CourseID] = append(grouped[l.CourseID], l)
	}

	var instructors []account.User
	if err := db.Where("id IN (?)", instructorIds).Find(&instructors).Error; err != nil {
		return nil, err
	}
	instructorNames := map[types.ID]string{}
	for _, u := range instructors {
		instructorNames[u.ID] = u.DisplayName()
	}

	for _, c := range courses {
		details = append(details, domain.CourseDetail{
			Course:         c,
			Difficulty:     domain.CourseDifficulty(grouped[c.ID]),
			LessonsCount:   len(grouped[c.ID]),
			InstructorName: instructorNames[c.InstructorID],
		})
	}
	return details, nil
}
