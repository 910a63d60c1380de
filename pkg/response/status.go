package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse is the auth envelope: {status: "success"|"error", message, data}.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success status envelope.
func OK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, StatusResponse{Status: StatusSuccess, Message: message, Data: data})
}

// Fail writes an error status envelope.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, StatusResponse{Status: StatusError, Message: message})
}

// Abort writes an error status envelope and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, StatusResponse{Status: StatusError, Message: message})
}
