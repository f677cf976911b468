package models

import (
	"github.com/samber/lo"

	"github.com/rollcall-app/rollcall/config"
	"github.com/rollcall-app/rollcall/database"
	"github.com/rollcall-app/rollcall/gravatar"
)

// ToUserView converts a stored user into its view model. Users without an
// uploaded avatar fall back to a Gravatar URL derived from their email.
func ToUserView(user *database.User, gravatarCfg *config.GravatarConfig) UserView {
	v := UserView{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if user.Avatar != nil {
		v.AvatarURL = user.Avatar.URL
		v.HasAvatar = true
	} else {
		v.AvatarURL = gravatar.GenerateURL(user.Email, gravatarCfg)
	}
	return v
}

// ToUserViews converts a listing of stored users into view models.
func ToUserViews(users []database.User, gravatarCfg *config.GravatarConfig) []UserView {
	return lo.Map(users, func(u database.User, _ int) UserView {
		return ToUserView(&u, gravatarCfg)
	})
}
