package middleware

import (
	"net/http"
	"strings"

	"stichting-asha/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Authenticate attaches the session of a valid bearer token to the
// context. Requests without a usable token continue anonymously; the
// route decides whether that is enough. Websocket clients may pass the
// token as ?token= instead.
func Authenticate(jwtManager *auth.JWTManager, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			log.WithError(err).WithField("path", c.FullPath()).Debug("ignoring invalid session token")
			c.Next()
			return
		}

		c.Set(auth.SessionKey, claims.Session())
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Session returns the session set by Authenticate, or nil.
func Session(c *gin.Context) *auth.Session {
	v, ok := c.Get(auth.SessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*auth.Session)
	return s
}

// RequireSession rejects anonymous requests with the given status and
// message.
func RequireSession(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Session(c) == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// RequireLogin is RequireSession with the generic 401.
func RequireLogin() gin.HandlerFunc {
	return RequireSession(http.StatusUnauthorized, "Niet ingelogd")
}
