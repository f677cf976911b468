// Package auth resolves the session identity and guards protected routes.
package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rollcall-app/rollcall/api/models"
	"github.com/rollcall-app/rollcall/database"
)

const (
	sessionUserKey = "user_id"
	identityKey    = "identity"
)

// EstablishSession stores the user's id in the session, marking the browser
// as logged in.
func EstablishSession(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID.Hex())
	return session.Save()
}

// ClearSession removes the session identity and any pending flash messages.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// HasSession reports whether the browser carries a logged-in session. It does
// not verify that the account still exists; RequireAuth does that.
func HasSession(c *gin.Context) bool {
	id, ok := sessions.Default(c).Get(sessionUserKey).(string)
	return ok && id != ""
}

// Current returns the identity attached by RequireAuth, or nil.
func Current(c *gin.Context) *models.Identity {
	if identity, ok := c.Get(identityKey); ok {
		if id, ok := identity.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

// Authorized reports whether the identity may act on the target user record:
// the owner themselves, or any admin.
func Authorized(identity *models.Identity, target bson.ObjectID) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin || identity.ID == target
}
