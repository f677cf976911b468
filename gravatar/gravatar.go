// Package gravatar derives fallback avatar URLs for users who have not
// uploaded a profile image.
package gravatar

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rollcall-app/rollcall/config"
)

// GenerateURL returns the Gravatar URL for an email address, or an empty
// string when the fallback is disabled or no email is set.
func GenerateURL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}

	// Gravatar hashes the trimmed, lowercased address
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(email))))
	u := fmt.Sprintf("https://www.gravatar.com/avatar/%x", sum)

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
