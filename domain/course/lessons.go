package course

import (
	"academy/access"
	"academy/authority"
	"academy/domain"
	"academy/idgen"
	"academy/persistence"
	"academy/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// Lessons are scoped through their course: every operation loads the course first.

func QueryLessons(courseID types.ID, sec *session.Session) ([]domain.Lesson, error) {
	if err := access.AssertPermissions(sec, authority.LessonView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	c, err := findVisibleCourse(db, courseID, sec)
	if err != nil {
		return nil, err
	}
	lessons := []domain.Lesson{}
	if err := db.Where("course_id = ?", c.ID).Order("created_at ASC, id ASC").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func DetailLesson(courseID, lessonID types.ID, sec *session.Session) (*domain.Lesson, error) {
	if err := access.AssertPermissions(sec, authority.LessonView); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	c, err := findVisibleCourse(db, courseID, sec)
	if err != nil {
		return nil, err
	}
	return findLesson(db, c.ID, lessonID)
}

func CreateLesson(courseID types.ID, l *domain.LessonCreation, sec *session.Session) (*domain.Lesson, error) {
	if err := assertLessonAuthor(sec, authority.LessonCreate); err != nil {
		return nil, err
	}
	var lesson domain.Lesson
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		c, err := findVisibleCourse(tx, courseID, sec)
		if err != nil {
			return err
		}
		now := time.Now()
		lesson = domain.Lesson{ID: idgen.NextID(idWorker), CourseID: c.ID, Title: l.Title, Description: l.Description,
			Difficulty: l.Difficulty, Type: l.Type, ResourceURL: l.ResourceURL, CreatedAt: now, UpdatedAt: now}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func UpdateLesson(courseID, lessonID types.ID, u *domain.LessonUpdating, sec *session.Session) (*domain.Lesson, error) {
	if err := assertLessonAuthor(sec, authority.LessonEdit); err != nil {
		return nil, err
	}
	var updated *domain.Lesson
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		c, err := findVisibleCourse(tx, courseID, sec)
		if err != nil {
			return err
		}
		lesson, err := findLesson(tx, c.ID, lessonID)
		if err != nil {
			return err
		}
		changes := map[string]interface{}{"title": u.Title, "description": u.Description, "difficulty": u.Difficulty,
			"type": u.Type, "resource_url": u.ResourceURL, "updated_at": time.Now()}
		if err := tx.Model(&domain.Lesson{}).Where("id = ?", lesson.ID).Updates(changes).Error; err != nil {
			return err
		}
		updated, err = findLesson(tx, c.ID, lesson.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func DeleteLesson(courseID, lessonID types.ID, sec *session.Session) error {
	if err := assertLessonAuthor(sec, authority.LessonDelete); err != nil {
		return err
	}
	return persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		c, err := findVisibleCourse(tx, courseID, sec)
		if err != nil {
			return err
		}
		lesson, err := findLesson(tx, c.ID, lessonID)
		if err != nil {
			return err
		}
		return tx.Where("id = ?", lesson.ID).Delete(&domain.Lesson{}).Error
	})
}

func assertLessonAuthor(sec *session.Session, perm string) error {
	if err := access.AssertRoles(sec, authority.RoleInstructor, authority.RoleAdmin, authority.RoleSuperAdmin); err != nil {
		return err
	}
	return access.AssertPermissions(sec, perm)
}

func findLesson(db *gorm.DB, courseID, lessonID types.ID) (*domain.Lesson, error) {
	lesson := domain.Lesson{}
	if err := db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}
