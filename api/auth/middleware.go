package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rollcall-app/rollcall/api/flash"
	"github.com/rollcall-app/rollcall/api/models"
	"github.com/rollcall-app/rollcall/database"
)

// RequireAuth redirects to the login page unless the session resolves to an
// existing user. The user record is fetched fresh on every request, so a
// deleted account or a revoked admin flag takes effect immediately.
func RequireAuth(store database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserKey)
		hex, ok := raw.(string)
		if !ok || hex == "" {
			redirectToLogin(c)
			return
		}

		id, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			redirectToLogin(c)
			return
		}

		user, err := store.GetUserByID(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				c.String(http.StatusInternalServerError, "Oh no! Something went wrong!")
				c.Abort()
				return
			}
			// stale session pointing at a deleted account
			session.Clear()
			_ = session.Save()
			redirectToLogin(c)
			return
		}

		c.Set(identityKey, &models.Identity{
			ID:      user.ID,
			Name:    user.Name,
			IsAdmin: user.IsAdmin,
		})
		c.Next()
	}
}

// RequireAdmin denies non-admins with a flash and a redirect. It must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Current(c)
		if identity == nil || !identity.IsAdmin {
			flash.Error(c, "You do not have permission to do that!")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	flash.Error(c, "You must be logged in first!")
	c.Redirect(http.StatusFound, "/user/login")
	c.Abort()
}
