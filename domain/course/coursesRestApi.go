package course

import (
	"academy/common"
	"academy/domain"
	"academy/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	CoursesApiRoot = "/api/courses"

	QueryCoursesFunc = QueryCourses
	DetailCourseFunc = DetailCourse
	CreateCourseFunc = CreateCourse
	UpdateCourseFunc = UpdateCourse
	DeleteCourseFunc = DeleteCourse

	QueryLessonsFunc = QueryLessons
	DetailLessonFunc = DetailLesson
	CreateLessonFunc = CreateLesson
	UpdateLessonFunc = UpdateLesson
	DeleteLessonFunc = DeleteLesson
)

func RegisterCoursesRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	courses := r.Group(CoursesApiRoot, middleWares...)
	courses.GET("", HandleQueryCourses)
	courses.POST("", HandleCreateCourse)
	courses.GET(":id", HandleDetailCourse)
	courses.PUT(":id", HandleUpdateCourse)
	courses.DELETE(":id", HandleDeleteCourse)

	courses.GET(":id/lessons", HandleQueryLessons)
	courses.POST(":id/lessons", HandleCreateLesson)
	courses.GET(":id/lessons/:lessonId", HandleDetailLesson)
	courses.PUT(":id/lessons/:lessonId", HandleUpdateLesson)
	courses.DELETE(":id/lessons/:lessonId", HandleDeleteLesson)
}

func HandleQueryCourses(c *gin.Context) {
	result, err := QueryCoursesFunc(session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDetailCourse(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailCourseFunc(id, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateCourse(c *gin.Context) {
	payload := domain.CourseCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateCourseFunc(&payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateCourse(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.CourseUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateCourseFunc(id, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteCourse(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteCourseFunc(id, session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleQueryLessons(c *gin.Context) {
	courseID, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := QueryLessonsFunc(courseID, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDetailLesson(c *gin.Context) {
	courseID, lessonID := bindLessonPath(c)
	result, err := DetailLessonFunc(courseID, lessonID, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateLesson(c *gin.Context) {
	courseID, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.LessonCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateLessonFunc(courseID, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleUpdateLesson(c *gin.Context) {
	courseID, lessonID := bindLessonPath(c)
	payload := domain.LessonUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := UpdateLessonFunc(courseID, lessonID, &payload, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteLesson(c *gin.Context) {
	courseID, lessonID := bindLessonPath(c)
	if err := DeleteLessonFunc(courseID, lessonID, session.FindSession(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func bindLessonPath(c *gin.Context) (courseID, lessonID types.ID) {
	courseID, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	lessonID, err = common.BindingPathID(c, "lessonId")
	if err != nil {
		panic(err)
	}
	return courseID, lessonID
}
