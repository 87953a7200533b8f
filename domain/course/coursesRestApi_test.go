package course_test

import (
	"academy/authority"
	"academy/bizerror"
	"academy/common"
	"academy/domain"
	"academy/domain/course"
	"academy/session"
	"academy/testinfra"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("CoursesRestApi", func() {
	var (
		router *gin.Engine
		sec    *session.Session
		t      = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	)
	BeforeEach(func() {
		sec = testinfra.BuildSession(20, 2, authority.RoleInstructor)
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		course.RegisterCoursesRestApis(router, func(c *gin.Context) {
			session.InjectSessionIntoGinContext(c, sec)
			c.Next()
		})
	})
	AfterEach(func() {
		course.QueryCoursesFunc = course.QueryCourses
		course.CreateCourseFunc = course.CreateCourse
		course.DeleteCourseFunc = course.DeleteCourse
		course.DetailLessonFunc = course.DetailLesson
		course.CreateLessonFunc = course.CreateLesson
		course.UpdateLessonFunc = course.UpdateLesson
	})

	Describe("HandleQueryCourses", func() {
		It("should be able to query courses successfully", func() {
			course.QueryCoursesFunc = func(s *session.Session) ([]domain.CourseDetail, error) {
				return []domain.CourseDetail{{Course: domain.Course{ID: 1, Title: "Go 101", Description: "basics", OrganizationID: 2,
					InstructorID: 20, CreatedAt: t, UpdatedAt: t}, Difficulty: 4, LessonsCount: 3, InstructorName: "Jane Instructor"}}, nil
			}
			req := httptest.NewRequest(http.MethodGet, course.CoursesApiRoot, nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id": "1", "title": "Go 101", "description": "basics", "organizationId": "2", "instructorId": "20",
				"createdAt": "2021-01-01T00:00:00Z", "updatedAt": "2021-01-01T00:00:00Z",
				"difficulty": 4, "lessonsCount": 3, "instructorName": "Jane Instructor"}]`))
		})
	})

	Describe("HandleCreateCourse", func() {
		It("should validate the title", func() {
			req := httptest.NewRequest(http.MethodPost, course.CoursesApiRoot, common.StringReader(`{"title": "Go"}`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code": "validation_error", "message": "validation failed",
				"data": {"title": "failed on the 'min' rule (3)"}}`))
		})

		It("should report gate failures as forbidden", func() {
			course.CreateCourseFunc = func(c *domain.CourseCreation, s *session.Session) (*domain.CourseDetail, error) {
				return nil, bizerror.ErrForbidden
			}
			req := httptest.NewRequest(http.MethodPost, course.CoursesApiRoot, common.StringReader(`{"title": "Go 101"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
		})

		It("should be able to create course successfully", func() {
			var principal *session.Session
			course.CreateCourseFunc = func(c *domain.CourseCreation, s *session.Session) (*domain.CourseDetail, error) {
				principal = s
				return &domain.CourseDetail{Course: domain.Course{ID: 1, Title: c.Title, OrganizationID: 2, InstructorID: 20,
					CreatedAt: t, UpdatedAt: t}}, nil
			}
			req := httptest.NewRequest(http.MethodPost, course.CoursesApiRoot, common.StringReader(`{"title": "Go 101"}`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(principal.Identity.ID).To(Equal(types.ID(20)))
		})
	})

	Describe("HandleDeleteCourse", func() {
		It("should report concealed courses as not found", func() {
			course.DeleteCourseFunc = func(id types.ID, s *session.Session) error {
				return bizerror.ErrNotFound
			}
			req := httptest.NewRequest(http.MethodDelete, course.CoursesApiRoot+"/1", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("lessons", func() {
		It("should pass both path ids", func() {
			var courseID, lessonID types.ID
			course.DetailLessonFunc = func(c, l types.ID, s *session.Session) (*domain.Lesson, error) {
				courseID, lessonID = c, l
				return &domain.Lesson{ID: l, CourseID: c, Title: "Intro", Type: "video", CreatedAt: t, UpdatedAt: t}, nil
			}
			req := httptest.NewRequest(http.MethodGet, course.CoursesApiRoot+"/1/lessons/7", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"id": "7", "courseId": "1", "title": "Intro", "description": "", "difficulty": 0,
				"type": "video", "resourceUrl": "", "createdAt": "2021-01-01T00:00:00Z", "updatedAt": "2021-01-01T00:00:00Z"}`))
			Expect(courseID).To(Equal(types.ID(1)))
			Expect(lessonID).To(Equal(types.ID(7)))
		})

		It("should reject malformed lesson ids", func() {
			req := httptest.NewRequest(http.MethodGet, course.CoursesApiRoot+"/1/lessons/abc", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("should validate difficulty and resource url", func() {
			req := httptest.NewRequest(http.MethodPost, course.CoursesApiRoot+"/1/lessons", common.StringReader(`
				{"title": "Intro", "type": "video", "difficulty": 6, "resourceUrl": "not a url"}
			`))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code": "validation_error", "message": "validation failed",
				"data": {"difficulty": "failed on the 'max' rule (5)", "resourceUrl": "failed on the 'url' rule"}}`))
		})

		It("should be able to create lesson successfully", func() {
			var payload *domain.LessonCreation
			course.CreateLessonFunc = func(c types.ID, l *domain.LessonCreation, s *session.Session) (*domain.Lesson, error) {
				payload = l
				return &domain.Lesson{ID: 7, CourseID: c, Title: l.Title, Type: l.Type, Difficulty: l.Difficulty, CreatedAt: t, UpdatedAt: t}, nil
			}
			req := httptest.NewRequest(http.MethodPost, course.CoursesApiRoot+"/1/lessons", common.StringReader(`
				{"title": "Intro", "type": "video", "difficulty": 2, "resourceUrl": "https://cdn.example.com/a.mp4"}
			`))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(*payload).To(Equal(domain.LessonCreation{Title: "Intro", Type: "video", Difficulty: 2,
				ResourceURL: "https://cdn.example.com/a.mp4"}))
		})
	})
})
