package middlewares

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// Bare identifier paths: the 8-hex QR form and the legacy "b" + 6 digits
// form. The legacy pattern is intentionally narrower and kept separate.
var (
	qrPathPattern     = regexp.MustCompile(`^/[0-9a-f]{8}$`)
	legacyPathPattern = regexp.MustCompile(`^/b\d{6}$`)
)

// IsBareIdentifierPath reports whether path is a scanned identifier rather
// than an application route. Pure function of the path string.
func IsBareIdentifierPath(path string) bool {
	return qrPathPattern.MatchString(path) || legacyPathPattern.MatchString(path)
}

// QRRedirectMiddleware rewrites bare identifier paths to the canonical box
// detail route before any other routing.
func QRRedirectMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if IsBareIdentifierPath(path) {
			c.Redirect(http.StatusFound, "/box"+path)
			c.Abort()
			return
		}
		c.Next()
	}
}
