package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID ensures every request carries an X-Request-ID, generating one
// when the client did not send it. The id is stored in the context for the
// request logger and for error responses.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger writes one line per request with the request id, status, latency,
// client, method, and path. The query string is kept since sheet routes
// carry flags like force= on it.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		requestID := c.GetString("request_id")
		status := c.Writer.Status()
		latency := time.Since(start)

		if len(c.Errors) > 0 {
			log.Printf("http: request_id=%s status=%d latency=%s client=%s %s %s errors=%q",
				requestID, status, latency, c.ClientIP(), c.Request.Method, path, c.Errors.String())
			return
		}
		log.Printf("http: request_id=%s status=%d latency=%s client=%s %s %s",
			requestID, status, latency, c.ClientIP(), c.Request.Method, path)
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
