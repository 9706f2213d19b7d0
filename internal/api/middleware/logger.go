package middleware

import (
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs requests but ignores "broken pipe" errors caused by the
// browser cancelling a sound test mid-stream.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		for _, e := range c.Errors {
			if ne, ok := e.Err.(*net.OpError); ok {
				if se, ok := ne.Err.(*os.SyscallError); ok {
					errMsg := strings.ToLower(se.Error())
					if strings.Contains(errMsg, "broken pipe") ||
						strings.Contains(errMsg, "connection reset by peer") {
						return
					}
				}
			}
		}

		log.Printf("[API] %3d | %13v | %-7s %s",
			c.Writer.Status(),
			time.Since(start),
			c.Request.Method,
			path,
		)
	}
}
