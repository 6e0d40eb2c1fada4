package pkg

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/xboot/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    domain.StatusCode `json:"code"`
	Message string            `json:"msg"`
	Success bool              `json:"success"`
	Data    any               `json:"data"`
}

// PageResponse is the envelope for paged results. Data holds the page items.
type PageResponse struct {
	Code       domain.StatusCode `json:"code"`
	Message    string            `json:"msg"`
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	PageIndex  int               `json:"pageIndex"`
	PageSize   int               `json:"pageSize"`
	TotalCount int64             `json:"totalCount"`
	PageCount  int               `json:"pageCount"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    domain.StatusCode `json:"code"`
	Message string            `json:"msg"`
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    domain.CodeSuccess,
		Message: domain.CodeSuccess.String(),
		Success: true,
		Data:    data,
	})
}

// Error sends a JSON error response. If err is a *domain.AppError, its code and
// message are used; anything else is reported as an internal error without
// leaking its text. Server-side failures are logged.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	code := domain.CodeInternalServerError
	msg := code.String()
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	c.JSON(status, Response{
		Code:    code,
		Message: msg,
		Success: false,
		Data:    nil,
	})
}

// Page sends a 200 paged response. The envelope carries the page metadata
// next to the items.
func Page[T any](c *gin.Context, page *domain.PageResult[T]) {
	if page == nil {
		page = domain.NewPage[T](nil, 0, 1, 1)
	}
	c.JSON(http.StatusOK, PageResponse{
		Code:       domain.CodeSuccess,
		Message:    domain.CodeSuccess.String(),
		Success:    true,
		Data:       page.Items,
		PageIndex:  page.PageIndex,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		PageCount:  page.PageCount,
	})
}

// ValidationError sends a 400 JSON response with per-field validation error details.
// It detects validator.ValidationErrors and extracts field-level messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it automatically sends a ValidationError response and returns false.
// Because obj is available, JSON struct tags are used for field names when possible.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response. A missing
// required field is reported with CodeRequiredError, any other rule with
// CodeBadRequest. When obj is non-nil, JSON tag names are preferred.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{
			Code:    domain.CodeBadRequest,
			Message: domain.CodeBadRequest.String(),
			Success: false,
			Data:    nil,
		})
		return
	}

	jsonTags := buildJSONTagMap(obj)

	code := domain.CodeBadRequest
	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		if fe.Tag() == "required" {
			code = domain.CodeRequiredError
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    code,
		Message: code.String(),
		Success: false,
		Errors:  fieldErrors,
	})
}

// fieldMessage renders a readable message for one failed rule.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "dive":
		return "Contains an invalid element"
	}
	if fe.Param() != "" {
		return "Failed rule " + fe.Tag() + "=" + fe.Param()
	}
	return "Failed rule " + fe.Tag()
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

func parseJSONTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
