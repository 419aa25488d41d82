package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeInvalidUserType    = 40002
	CodeNoFile             = 40003
	CodeFileTooLarge       = 40004
	CodeUnsupportedType    = 40005
	CodeNoQuestion         = 40006
	CodeInvalidUsername    = 40007
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeFileNotFound       = 40401
	CodeInternalServer     = 50000
	CodeUpstream           = 50001
	CodeUnavailable        = 50300
)

// ErrorBody is the shape of every failed response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Error: message,
		Code:  code,
	})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{
		Error: message,
		Code:  code,
	})
}
