package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the JSON envelope of every portal answer.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo carries the machine readable error code. Message is the
// French text shown to the user.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID   string      `json:"requestId"`
	WorkspaceID string      `json:"workspaceId,omitempty"`
	Timestamp   string      `json:"timestamp"`
	Pagination  *Pagination `json:"pagination,omitempty"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count. Non-positive page or limit fall
// back to 1 and 20.
func NewPagination(page, limit, totalItems int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

// Success writes a success response.
func Success(c *gin.Context, code int, message string, data interface{}) {
	write(c, Response{Success: true, Code: code, Message: message, Data: data}, nil)
}

// SuccessWithPagination writes a list page.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	write(c, Response{Success: true, Code: code, Message: message, Data: data}, NewPagination(page, limit, totalItems))
}

// Error writes an error response.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithData(c, code, errCode, message, nil)
}

// ErrorWithData writes an error response that also carries data, such as a
// login redirect or field errors.
func ErrorWithData(c *gin.Context, code int, errCode, message string, data interface{}) {
	write(c, Response{
		Code:    code,
		Message: message,
		Data:    data,
		Error:   &ErrorInfo{Code: errCode, Message: message},
	}, nil)
}

func write(c *gin.Context, resp Response, page *Pagination) {
	resp.Meta = Meta{
		RequestID:   requestID(c),
		WorkspaceID: c.GetString("workspace_id"),
		Timestamp:   time.Now().Format(time.RFC3339),
		Pagination:  page,
	}
	c.JSON(resp.Code, resp)
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := uuid.New().String()[:8]
	c.Set("request_id", id)
	return id
}
