package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Course struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string `json:"title" sql:"type:VARCHAR(50) NOT NULL"`
	Description string `json:"description" sql:"type:TEXT"`

	OrganizationID types.ID `json:"organizationId" gorm:"index:idx_course_organization" sql:"type:BIGINT UNSIGNED NOT NULL"`
	InstructorID   types.ID `json:"instructorId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Course) TenantID() types.ID {
	return c.OrganizationID
}

// CourseDetail adds values derived from lessons and the instructor. Difficulty is never stored.
type CourseDetail struct {
	Course

	Difficulty     int    `json:"difficulty"`
	LessonsCount   int    `json:"lessonsCount"`
	InstructorName string `json:"instructorName"`
}

type CourseCreation struct {
	Title       string `json:"title" binding:"required,min=3,max=50"`
	Description string `json:"description" binding:"max=2000"`
}

type CourseUpdating struct {
	Title       string `json:"title" binding:"required,min=3,max=50"`
	Description string `json:"description" binding:"max=2000"`
}

const (
	MinLessonDifficulty = 0
	MaxLessonDifficulty = 5
)

type Lesson struct {
	ID       types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CourseID types.ID `json:"courseId" gorm:"index:idx_lesson_course" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title       string `json:"title" sql:"type:VARCHAR(100) NOT NULL"`
	Description string `json:"description" sql:"type:TEXT"`
	Difficulty  int    `json:"difficulty"`
	Type        string `json:"type" sql:"type:VARCHAR(50) NOT NULL"`
	ResourceURL string `json:"resourceUrl" sql:"type:VARCHAR(255)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LessonCreation struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=2000"`
	Difficulty  int    `json:"difficulty" binding:"min=0,max=5"`
	Type        string `json:"type" binding:"required,max=50"`
	ResourceURL string `json:"resourceUrl" binding:"omitempty,url,max=255"`
}

type LessonUpdating = LessonCreation

// CourseDifficulty is the highest difficulty among the lessons, 0 without lessons.
func CourseDifficulty(lessons []Lesson) int {
	difficulty := 0
	for _, l := range lessons {
		if l.Difficulty > difficulty {
			difficulty = l.Difficulty
		}
	}
	return difficulty
}
