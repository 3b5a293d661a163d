package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumesync/internal/errcode"
)

// Error writes the {"error", "code"} body every failed request answers with.
func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.InvalidRequest, msg) }
func Invalid(c *gin.Context, msg string)    { Error(c, http.StatusBadRequest, errcode.InvalidSection, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.ResourceMissing, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, errcode.SystemError, msg) }
