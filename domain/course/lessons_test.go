package course_test

import (
	"academy/bizerror"
	"academy/domain"
	"academy/domain/course"
	"academy/session"
	"academy/testinfra"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Lessons", func() {
	var (
		testDatabase *testinfra.TestDatabase
		instructor   *session.Session
		own          *domain.CourseDetail
		foreign      *domain.CourseDetail
		foreignLes   *domain.Lesson
	)
	BeforeEach(func() {
		testDatabase = setupCourseDatabase()
		instructor = sessionOf("instructor@demo.com")
		var err error
		own, err = course.CreateCourse(&domain.CourseCreation{Title: "Go 101"}, instructor)
		Expect(err).To(BeNil())
		foreign, err = course.CreateCourse(&domain.CourseCreation{Title: "Foreign Course"}, sessionOf("teacher@other.com"))
		Expect(err).To(BeNil())
		foreignLes, err = course.CreateLesson(foreign.ID, &domain.LessonCreation{Title: "Secret", Type: "video"}, sessionOf("teacher@other.com"))
		Expect(err).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	It("should create, list, update and delete lessons of own courses", func() {
		l, err := course.CreateLesson(own.ID, &domain.LessonCreation{Title: "Intro", Description: "first", Difficulty: 3,
			Type: "video", ResourceURL: "https://cdn.example.com/intro.mp4"}, instructor)
		Expect(err).To(BeNil())
		Expect(l.CourseID).To(Equal(own.ID))

		student := sessionOf("student@demo.com")
		lessons, err := course.QueryLessons(own.ID, student)
		Expect(err).To(BeNil())
		Expect(lessons).To(HaveLen(1))
		Expect(lessons[0].ResourceURL).To(Equal("https://cdn.example.com/intro.mp4"))

		detail, err := course.DetailLesson(own.ID, l.ID, student)
		Expect(err).To(BeNil())
		Expect(detail.Difficulty).To(Equal(3))

		updated, err := course.UpdateLesson(own.ID, l.ID, &domain.LessonUpdating{Title: "Intro 2", Difficulty: 0, Type: "text"}, instructor)
		Expect(err).To(BeNil())
		Expect(updated.Title).To(Equal("Intro 2"))
		Expect(updated.Difficulty).To(BeZero())
		Expect(updated.ResourceURL).To(BeEmpty())

		Expect(course.DeleteLesson(own.ID, l.ID, instructor)).To(Succeed())
		lessons, err = course.QueryLessons(own.ID, student)
		Expect(err).To(BeNil())
		Expect(lessons).To(BeEmpty())
	})

	It("should refuse students to author lessons", func() {
		_, err := course.CreateLesson(own.ID, &domain.LessonCreation{Title: "Intro", Type: "video"}, sessionOf("student@demo.com"))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	It("should scope lessons through their course", func() {
		_, err := course.QueryLessons(foreign.ID, instructor)
		Expect(err).To(Equal(bizerror.ErrNotFound))
		_, err = course.DetailLesson(foreign.ID, foreignLes.ID, instructor)
		Expect(err).To(Equal(bizerror.ErrNotFound))
		_, err = course.CreateLesson(foreign.ID, &domain.LessonCreation{Title: "Injected", Type: "video"}, instructor)
		Expect(err).To(Equal(bizerror.ErrNotFound))
		Expect(course.DeleteLesson(foreign.ID, foreignLes.ID, instructor)).To(Equal(bizerror.ErrNotFound))

		// a foreign lesson addressed through an own course does not exist there
		_, err = course.DetailLesson(own.ID, foreignLes.ID, instructor)
		Expect(err).To(Equal(gorm.ErrRecordNotFound))
		_, err = course.UpdateLesson(own.ID, foreignLes.ID, &domain.LessonUpdating{Title: "Hijacked", Type: "video"}, instructor)
		Expect(err).To(Equal(gorm.ErrRecordNotFound))

		lesson, err := course.DetailLesson(foreign.ID, foreignLes.ID, sessionOf("super@system.local"))
		Expect(err).To(BeNil())
		Expect(lesson.Title).To(Equal("Secret"))
	})
})
