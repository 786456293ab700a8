// internal/middleware/permissions.go

package middleware

import (
	"net/http"

	"stichting-asha/internal/models"

	"github.com/gin-gonic/gin"
)

// Messages returned when a role check fails.
const (
	MsgNoAccess           = "Geen toegang"
	MsgEventsCreateDenied = "Geen toegang. Alleen beheerders kunnen evenementen toevoegen."
	MsgEventsManageDenied = "Geen toegang. Alleen beheerders kunnen evenementen bewerken."
	MsgProjectsCreate     = "Geen toegang. Alleen beheerders kunnen projecten toevoegen."
	MsgProjectsUpdate     = "Geen toegang. Alleen beheerders kunnen projecten bijwerken."
	MsgProjectsDelete     = "Geen toegang. Alleen beheerders kunnen projecten verwijderen."
	MsgVolunteersDenied   = "Geen toegang. Alleen beheerders kunnen vrijwilligers beheren."
	MsgContentDenied      = "Geen toegang. Alleen beheerders kunnen deze inhoud beheren."
	MsgDashboardDenied    = "Geen toegang tot het dashboard."
	MsgAuthRequired       = "Authenticatie vereist"
)

// RequireRole aborts with 403 and message unless allowed accepts the
// session role. Anonymous requests get the same 403.
func RequireRole(message string, allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Session(c)
		if s == nil || !allowed(s.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

// RequireEventCreator allows beheerders only.
func RequireEventCreator() gin.HandlerFunc {
	return RequireRole(MsgEventsCreateDenied, models.Role.CanCreateEvents)
}

// RequireEventManager guards edits and deletes of agenda items.
func RequireEventManager() gin.HandlerFunc {
	return RequireRole(MsgEventsManageDenied, models.Role.CanManageEvents)
}

// RequireAdmin guards back-office content: projects, volunteers, notices
// and the newsletter.
func RequireAdmin(message string) gin.HandlerFunc {
	return RequireRole(message, models.Role.CanManageContent)
}

// RequireStaff allows every dashboard role.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(MsgDashboardDenied, models.Role.IsStaff)
}
