// Package response defines the wire envelope shared by all API handlers.
// Every endpoint answers {code, msg, data} with code mirroring the HTTP
// status, so clients can branch without inspecting transport details.
package response

import "github.com/gin-gonic/gin"

// Body is the envelope for every API response.
type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// OK writes a 200 envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, Body{Code: 200, Msg: "ok", Data: data})
}

// Error writes an error envelope with the given status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{Code: status, Msg: msg})
}

// ErrorWithData writes an error envelope carrying a payload, used for
// business-state outcomes that are not transport failures.
func ErrorWithData(c *gin.Context, status int, msg string, data interface{}) {
	c.JSON(status, Body{Code: status, Msg: msg, Data: data})
}
