package gravatar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rollcall-app/rollcall/config"
)

func TestGenerateURL(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		config   *config.GravatarConfig
		expected string
	}{
		{
			name:     "disabled gravatar",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: false},
			expected: "",
		},
		{
			name:     "nil config",
			email:    "test@example.com",
			config:   nil,
			expected: "",
		},
		{
			name:     "empty email",
			email:    "",
			config:   &config.GravatarConfig{Enabled: true},
			expected: "",
		},
		{
			name:  "basic enabled config",
			email: "test@example.com",
			config: &config.GravatarConfig{
				Enabled: true,
			},
			expected: "https://www.gravatar.com/avatar/973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b",
		},
		{
			name:  "config with all options",
			email: "TEST@EXAMPLE.COM", // Test case normalization
			config: &config.GravatarConfig{
				Enabled:      true,
				DefaultImage: "identicon",
				Rating:       "pg",
				Size:         120,
			},
			expected: "https://www.gravatar.com/avatar/973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b?d=identicon&r=pg&s=120",
		},
		{
			name:  "email with whitespace",
			email: "  test@example.com  ",
			config: &config.GravatarConfig{
				Enabled: true,
			},
			expected: "https://www.gravatar.com/avatar/973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateURL(tt.email, tt.config)
			assert.Equal(t, tt.expected, result)
		})
	}
}
