// internal/api/response.go
package api

import (
	"net/http"

	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"

	"github.com/gin-gonic/gin"
)

// respondError writes the error body the form expects: the Portuguese
// message under "error", the code, the request ID and every diagnostic field
// at the top level.
func respondError(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := stdErr.HTTPStatus()

	body := gin.H{}
	for k, v := range stdErr.Metadata {
		body[k] = v
	}
	body["error"] = stdErr.Message
	body["code"] = stdErr.Code
	body["requestId"] = requestID(c)

	fields := map[string]interface{}{
		"code":    stdErr.Code,
		"status":  status,
		"details": stdErr.Details,
	}
	log := logger.FromContext(c.Request.Context(), logger.NewNoOpLogger())
	if status >= http.StatusInternalServerError {
		log.Error(stdErr.Message, fields)
	} else {
		log.Warn(stdErr.Message, fields)
	}

	c.AbortWithStatusJSON(status, body)
}

func respondOK(c *gin.Context, payload gin.H) {
	payload["requestId"] = requestID(c)
	c.JSON(http.StatusOK, payload)
}
