package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidgetConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("zero config is valid", func(t *testing.T) {
		require.NoError(t, WidgetConfig{}.Validate())
	})

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultWidgetConfig().Validate())
	})

	t.Run("rejects unknown positions", func(t *testing.T) {
		require.Error(t, WidgetConfig{Position: "top-center"}.Validate())
		require.NoError(t, WidgetConfig{Position: WidgetPositionBottomLeft}.Validate())
	})

	t.Run("rejects malformed colors", func(t *testing.T) {
		require.Error(t, WidgetConfig{ChatColor: "purple"}.Validate())
		require.Error(t, WidgetConfig{BackgroundColor: "#fff"}.Validate())
		require.Error(t, WidgetConfig{TextColor: "#12345g"}.Validate())
		require.NoError(t, WidgetConfig{SecondaryColor: "#A1b2C3"}.Validate())
	})

	t.Run("rejects non-http urls", func(t *testing.T) {
		require.Error(t, WidgetConfig{LogoURL: "ftp://cdn.example/logo.png"}.Validate())
		require.Error(t, WidgetConfig{WebhookURL: "javascript:alert(1)"}.Validate())
		require.NoError(t, WidgetConfig{LogoURL: "https://cdn.example/logo.png"}.Validate())
	})
}

func TestWidgetConfigNormalized(t *testing.T) {
	t.Parallel()

	t.Run("empty config becomes the defaults", func(t *testing.T) {
		require.Equal(t, DefaultWidgetConfig(), WidgetConfig{}.Normalized())
	})

	t.Run("set fields survive", func(t *testing.T) {
		got := WidgetConfig{AgentName: "Acme Bot", ChatColor: "#112233"}.Normalized()
		require.Equal(t, "Acme Bot", got.AgentName)
		require.Equal(t, "#112233", got.ChatColor)
		require.Equal(t, DefaultWidgetConfig().WelcomeText, got.WelcomeText)
	})

	t.Run("logo fields stay empty until uploaded", func(t *testing.T) {
		got := WidgetConfig{}.Normalized()
		require.Empty(t, got.LogoURL)
		require.Empty(t, got.LogoStoragePath)
	})
}
