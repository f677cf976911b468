package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rollcall-app/rollcall/api/auth"
	"github.com/rollcall-app/rollcall/api/flash"
	"github.com/rollcall-app/rollcall/avatar"
	"github.com/rollcall-app/rollcall/config"
	"github.com/rollcall-app/rollcall/database"
)

// genericErrorMessage is shown whenever no more specific message is set.
const genericErrorMessage = "Oh no! Something went wrong!"

type Handler struct {
	store       database.Store
	avatars     *avatar.Storage
	gravatarCfg *config.GravatarConfig
}

func New(store database.Store, avatars *avatar.Storage, gravatarCfg *config.GravatarConfig) *Handler {
	return &Handler{
		store:       store,
		avatars:     avatars,
		gravatarCfg: gravatarCfg,
	}
}

// Home renders the landing page.
func (h *Handler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", gin.H{"Title": "Rollcall"})
}

// NotFound renders the 404 fallback for unmatched routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, "Page not found")
}

// render draws a view with the identity and any pending flash messages
// attached. Flash messages are consumed here, exactly once.
func (h *Handler) render(c *gin.Context, status int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if identity := auth.Current(c); identity != nil {
		data["Identity"] = identity
	}
	success, errs := flash.Drain(c)
	data["Success"] = success
	data["Errors"] = errs
	c.HTML(status, view, data)
}

// renderError draws the generic error view. Internals never leak here, only
// the status and a short message.
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	if message == "" {
		message = genericErrorMessage
	}
	h.render(c, status, "error.html", gin.H{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
	})
}
