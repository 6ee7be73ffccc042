package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// Identity is the authenticated caller of the admin API, extracted from the
// token claims so handlers do not read gin context keys directly.
type Identity struct {
	Subject string
	Roles   []string
}

// IsAuthenticated reports whether a token subject was present.
func (i Identity) IsAuthenticated() bool {
	return i.Subject != ""
}

// HasRole checks if the caller has a specific role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if no token was verified.
func GetIdentity(c *gin.Context) Identity {
	subject := c.GetString(ContextSubjectKey)
	if subject == "" {
		return Identity{}
	}
	roles, _ := c.Get(ContextRolesKey)
	roleList, _ := roles.([]string)
	return Identity{Subject: subject, Roles: roleList}
}
