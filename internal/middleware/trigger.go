package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const HeaderReminderSecret = "X-Reminder-Secret"

// TriggerSecret protects machine-to-machine endpoints with a shared secret.
// An empty secret leaves them open.
func TriggerSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(HeaderReminderSecret))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			httputil.AbortWithError(c, apperrors.Unauthorized(nil))
			return
		}
		c.Next()
	}
}
