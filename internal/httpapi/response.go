package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"literature-lite/internal/auth"
	"literature-lite/internal/table"
	"literature-lite/literature"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeSuccess          = 0
	CodeInvalidParam     = 10001
	CodeUnauthorized     = 10002
	CodeOutOfTurn        = 10003
	CodeNotFound         = 10004
	CodeServerError      = 10005
	CodeInvalidState     = 10006
	CodeRuleViolation    = 10007
	CodeCapacityExceeded = 10008
	CodeUnavailable      = 10009
)

const (
	MsgSuccess      = "success"
	MsgInvalidParam = "invalid parameters"
	MsgUnauthorized = "unauthorized"
	MsgServerError  = "internal server error"
)

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeSuccess, Message: MsgSuccess, Data: data})
}

func badRequest(c *gin.Context, message string) {
	if message == "" {
		message = MsgInvalidParam
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: CodeInvalidParam, Message: message})
}

func unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = MsgUnauthorized
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: message})
}

// fail maps a command error to a status and code. Rejections keep their
// human readable message.
func fail(c *gin.Context, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = MsgServerError
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: msg})
}

func statusOf(err error) (int, int) {
	switch literature.KindOf(err) {
	case literature.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case literature.KindInvalidState:
		return http.StatusConflict, CodeInvalidState
	case literature.KindOutOfTurn:
		return http.StatusForbidden, CodeOutOfTurn
	case literature.KindRuleViolation:
		return http.StatusUnprocessableEntity, CodeRuleViolation
	case literature.KindCapacityExceeded:
		return http.StatusConflict, CodeCapacityExceeded
	}
	switch {
	case errors.Is(err, table.ErrTableClosed):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	}
	return http.StatusInternalServerError, CodeServerError
}
