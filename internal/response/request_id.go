package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key carrying the request ID.
const ContextKeyRequestID = "request_id"

// headerRequestID is the HTTP header the ID travels in, both ways.
const headerRequestID = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID for response
// metadata and log correlation. An inbound X-Request-ID is honored so
// callers can thread their own IDs through; otherwise a fresh UUID is
// minted. The ID is echoed back on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(headerRequestID, requestID)
		c.Next()
	}
}
