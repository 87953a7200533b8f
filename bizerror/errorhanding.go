package bizerror

import (
	"academy/common"
	"academy/infra/metrics"
	"academy/persistence"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func init() {
	// report json field names instead of go field names in validation failures
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	}
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	status, body := Resolve(genericErr)
	entry := logrus.WithFields(logrus.Fields{"method": c.Request.Method, "path": c.Request.URL.Path, "code": body.Code})
	if status >= http.StatusInternalServerError {
		entry.Errorf("request failed: %v", err)
	} else {
		entry.Infof("request rejected: %v", err)
	}
	metrics.ObserveError(body.Code)

	c.JSON(status, body)
	c.Abort()
}

// Resolve maps an error to its http status and response body.
func Resolve(err error) (int, *common.ErrorBody) {
	var bizErr BizError
	if errors.As(err, &bizErr) {
		respond := bizErr.Respond()
		return respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data}
	}

	// no body
	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request", Message: "body not found"}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request", Message: "invalid body format", Data: syntaxErr.Error()}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request", Message: "invalid body format", Data: typeErr.Field}
	}
	var badParam *common.ErrBadParam
	if errors.As(err, &badParam) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "bad_request", Message: badParam.Error()}
	}
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, &common.ErrorBody{Code: "validation_error", Message: "validation failed", Data: fieldMessages(validationErr)}
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, &common.ErrorBody{Code: "not_authenticated", Message: "not authenticated"}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, &common.ErrorBody{Code: "forbidden", Message: "access forbidden"}
	case errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound):
		return http.StatusNotFound, &common.ErrorBody{Code: "not_found", Message: "record not found"}
	case errors.Is(err, ErrConflict) || persistence.IsUniqueViolation(err):
		return http.StatusConflict, &common.ErrorBody{Code: "conflict", Message: "record already exists"}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, &common.ErrorBody{Code: "too_many_requests", Message: "too many requests"}
	case errors.Is(err, ErrRoleNotFound):
		return http.StatusInternalServerError, &common.ErrorBody{Code: "role_not_found", Message: "required role is not provisioned"}
	}

	return http.StatusInternalServerError, &common.ErrorBody{Code: "internal_error", Message: "internal server error"}
}

func fieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := map[string]string{}
	for _, fe := range errs {
		msg := "failed on the '" + fe.Tag() + "' rule"
		if fe.Param() != "" {
			msg = msg + " (" + fe.Param() + ")"
		}
		fields[fe.Field()] = msg
	}
	return fields
}
