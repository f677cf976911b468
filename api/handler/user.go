package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rollcall-app/rollcall/api/auth"
	"github.com/rollcall-app/rollcall/api/flash"
	"github.com/rollcall-app/rollcall/api/models"
	"github.com/rollcall-app/rollcall/database"
	"github.com/rollcall-app/rollcall/password"
	"github.com/rollcall-app/rollcall/validate"
)

// RegisterForm renders the registration form.
func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Register creates a new account from the submitted form, optionally storing
// an uploaded avatar, and logs the new user in.
func (h *Handler) Register(c *gin.Context) {
	var payload validate.Payload
	if err := c.ShouldBind(&payload); err != nil {
		flash.Error(c, "Could not read the submitted form")
		c.Redirect(http.StatusFound, "/user/register")
		return
	}

	if err := validate.Registration(payload); err != nil {
		flash.Error(c, err.Error())
		c.Redirect(http.StatusFound, "/user/register")
		return
	}

	hash, err := password.Hash(payload.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	user := &database.User{
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		PasswordHash: hash,
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		av, err := h.avatars.Save(fh)
		if err != nil {
			log.Error("failed to store avatar", "error", err)
			flash.Error(c, "Could not process the uploaded image")
			c.Redirect(http.StatusFound, "/user/register")
			return
		}
		user.Avatar = av
	}

	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		// no record points at the stored avatar, release it again
		if user.Avatar != nil {
			if rerr := h.avatars.Remove(user.Avatar.Filename); rerr != nil {
				log.Error("failed to remove avatar of failed registration", "error", rerr, "filename", user.Avatar.Filename)
			}
		}
		if errors.Is(err, database.ErrDuplicatePhone) {
			flash.Error(c, "That mobile number is already registered!")
			c.Redirect(http.StatusFound, "/user/register")
			return
		}
		log.Error("failed to create user", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	if err := auth.EstablishSession(c, user); err != nil {
		log.Error("failed to establish session", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	flash.Success(c, "Successfully created your account!")
	c.Redirect(http.StatusFound, "/user/"+user.ID.Hex())
}

// LoginForm renders the login form. Sessions that are already logged in are
// sent to the homepage instead.
func (h *Handler) LoginForm(c *gin.Context) {
	if auth.HasSession(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

// Login authenticates by phone and password. Unknown phone and wrong password
// produce the same message and burn the same bcrypt work, so the response
// doesn't reveal whether the phone exists.
func (h *Handler) Login(c *gin.Context) {
	phone := c.PostForm("phone")
	plain := c.PostForm("password")

	user, err := h.store.GetUserByPhone(c.Request.Context(), phone)

	var ok bool
	switch {
	case errors.Is(err, database.ErrNotFound):
		ok = password.VerifyDummy(plain)
	case err != nil:
		log.Error("failed to look up user for login", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	default:
		ok = password.Verify(user.PasswordHash, plain)
	}

	if !ok {
		flash.Error(c, "Incorrect phone number or password!")
		c.Redirect(http.StatusFound, "/user/login")
		return
	}

	if err := auth.EstablishSession(c, user); err != nil {
		log.Error("failed to establish session", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	flash.Success(c, "Welcome back, "+user.Name+"!")
	c.Redirect(http.StatusFound, "/user/"+user.ID.Hex())
}

// Logout clears the session.
func (h *Handler) Logout(c *gin.Context) {
	if err := auth.ClearSession(c); err != nil {
		log.Error("failed to clear session", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// Show renders a user's detail page. Only the owner or an admin may view it.
func (h *Handler) Show(c *gin.Context) {
	user, ok := h.authorizedTarget(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "show.html", gin.H{
		"Title": user.Name,
		"User":  models.ToUserView(user, h.gravatarCfg),
	})
}

// EditForm renders the profile edit form. Only the owner or an admin may
// open it.
func (h *Handler) EditForm(c *gin.Context) {
	user, ok := h.authorizedTarget(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "edit.html", gin.H{
		"Title": "Edit " + user.Name,
		"User":  models.ToUserView(user, h.gravatarCfg),
	})
}

// Update applies a validated profile update. Only whitelisted fields are
// touched; a blank password keeps the current one. A new avatar upload
// releases the previously stored file.
func (h *Handler) Update(c *gin.Context) {
	user, ok := h.authorizedTarget(c)
	if !ok {
		return
	}
	editURL := "/user/" + user.ID.Hex() + "/edit"

	var payload validate.Payload
	if err := c.ShouldBind(&payload); err != nil {
		flash.Error(c, "Could not read the submitted form")
		c.Redirect(http.StatusFound, editURL)
		return
	}

	if err := validate.Update(payload); err != nil {
		flash.Error(c, err.Error())
		c.Redirect(http.StatusFound, editURL)
		return
	}

	update := database.UserUpdate{
		Name:  &payload.Name,
		Email: &payload.Email,
		Phone: &payload.Phone,
	}

	if payload.Password != "" {
		hash, err := password.Hash(payload.Password)
		if err != nil {
			log.Error("failed to hash password", "error", err)
			h.renderError(c, http.StatusInternalServerError, "")
			return
		}
		update.PasswordHash = &hash
	}

	var replacedAvatar string
	if fh, err := c.FormFile("avatar"); err == nil {
		av, err := h.avatars.Save(fh)
		if err != nil {
			log.Error("failed to store avatar", "error", err)
			flash.Error(c, "Could not process the uploaded image")
			c.Redirect(http.StatusFound, editURL)
			return
		}
		update.Avatar = av
		if user.Avatar != nil {
			replacedAvatar = user.Avatar.Filename
		}
	}

	if err := h.store.UpdateUser(c.Request.Context(), user.ID, update); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicatePhone):
			flash.Error(c, "That mobile number is already registered!")
			c.Redirect(http.StatusFound, editURL)
		case errors.Is(err, database.ErrNotFound):
			flash.Error(c, "Cannot find that user!")
			c.Redirect(http.StatusFound, "/")
		default:
			log.Error("failed to update user", "error", err)
			h.renderError(c, http.StatusInternalServerError, "")
		}
		return
	}

	flash.Success(c, "Successfully updated account details!")

	// Release the replaced avatar only after the record points at the new
	// one. A failed release is surfaced, not swallowed.
	if replacedAvatar != "" {
		if err := h.avatars.Remove(replacedAvatar); err != nil {
			log.Error("failed to release replaced avatar", "error", err, "filename", replacedAvatar)
			flash.Error(c, "The previous profile image could not be released")
		}
	}

	c.Redirect(http.StatusFound, "/user/"+user.ID.Hex())
}

// Delete removes an account permanently. Owners deleting themselves are
// logged out.
func (h *Handler) Delete(c *gin.Context) {
	user, ok := h.authorizedTarget(c)
	if !ok {
		return
	}
	identity := auth.Current(c)

	if err := h.store.DeleteUser(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			flash.Error(c, "Cannot find that user!")
			c.Redirect(http.StatusFound, "/")
			return
		}
		log.Error("failed to delete user", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	if user.Avatar != nil {
		if err := h.avatars.Remove(user.Avatar.Filename); err != nil {
			log.Error("failed to remove avatar of deleted user", "error", err, "filename", user.Avatar.Filename)
		}
	}

	if identity != nil && identity.ID == user.ID {
		if err := auth.ClearSession(c); err != nil {
			log.Error("failed to clear session", "error", err)
		}
	}

	flash.Success(c, "Successfully deleted the account!")
	c.Redirect(http.StatusFound, "/user/register")
}

// Index lists all users. RequireAdmin guards the route; the listing itself
// never reaches non-admins.
func (h *Handler) Index(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}
	h.render(c, http.StatusOK, "users.html", gin.H{
		"Title": "All Users",
		"Users": models.ToUserViews(users, h.gravatarCfg),
	})
}

// authorizedTarget resolves the :id route parameter to a user record and
// enforces the owner-or-admin rule. It writes the failure response itself
// and returns ok=false when the caller must stop.
func (h *Handler) authorizedTarget(c *gin.Context) (*database.User, bool) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		flash.Error(c, "Cannot find that user!")
		c.Redirect(http.StatusFound, "/")
		return nil, false
	}

	identity := auth.Current(c)
	if !auth.Authorized(identity, id) {
		flash.Error(c, "You are not allowed to do that!")
		c.Redirect(http.StatusFound, "/user/login")
		return nil, false
	}

	user, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			flash.Error(c, "Cannot find that user!")
			c.Redirect(http.StatusFound, "/")
			return nil, false
		}
		log.Error("failed to get user", "error", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return nil, false
	}
	return user, true
}
