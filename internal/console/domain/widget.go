package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Widget positions the embed script understands.
const (
	WidgetPositionBottomRight = "bottom-right"
	WidgetPositionBottomLeft  = "bottom-left"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// WidgetConfig is the fixed widget-configuration record. The original
// stored this as a free-form JSON blob; here every field is explicit and
// validated at the boundary.
type WidgetConfig struct {
	AgentName        string `json:"agent_name"`
	LogoURL          string `json:"logo_url"`
	LogoStoragePath  string `json:"logo_storage_path"`
	WebhookURL       string `json:"webhook_url"`
	ChatColor        string `json:"chat_color"`
	BackgroundColor  string `json:"background_color"`
	TextColor        string `json:"text_color"`
	SecondaryColor   string `json:"secondary_color"`
	Position         string `json:"position"`
	WelcomeText      string `json:"welcome_text"`
	ResponseTimeText string `json:"response_time_text"`
}

// DefaultWidgetConfig returns the settings a new client starts with.
func DefaultWidgetConfig() WidgetConfig {
	return WidgetConfig{
		AgentName:        "AI Assistant",
		ChatColor:        "#854fff",
		BackgroundColor:  "#ffffff",
		TextColor:        "#333333",
		SecondaryColor:   "#6b3fd4",
		Position:         WidgetPositionBottomRight,
		WelcomeText:      "Hi 👋, how can I help?",
		ResponseTimeText: "I typically respond right away",
	}
}

// Validate rejects malformed settings before they reach the store.
func (w WidgetConfig) Validate() error {
	if w.Position != "" && w.Position != WidgetPositionBottomRight && w.Position != WidgetPositionBottomLeft {
		return fmt.Errorf("domain: invalid widget position %q", w.Position)
	}
	for name, c := range map[string]string{
		"chat_color":       w.ChatColor,
		"background_color": w.BackgroundColor,
		"text_color":       w.TextColor,
		"secondary_color":  w.SecondaryColor,
	} {
		if c != "" && !hexColor.MatchString(c) {
			return fmt.Errorf("domain: %s must be a #rrggbb color, got %q", name, c)
		}
	}
	for name, u := range map[string]string{
		"logo_url":    w.LogoURL,
		"webhook_url": w.WebhookURL,
	} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("domain: %s must be an http(s) URL", name)
		}
	}
	return nil
}

// Normalized fills unset fields from the defaults.
func (w WidgetConfig) Normalized() WidgetConfig {
	def := DefaultWidgetConfig()
	if w.AgentName == "" {
		w.AgentName = def.AgentName
	}
	if w.ChatColor == "" {
		w.ChatColor = def.ChatColor
	}
	if w.BackgroundColor == "" {
		w.BackgroundColor = def.BackgroundColor
	}
	if w.TextColor == "" {
		w.TextColor = def.TextColor
	}
	if w.SecondaryColor == "" {
		w.SecondaryColor = def.SecondaryColor
	}
	if w.Position == "" {
		w.Position = def.Position
	}
	if w.WelcomeText == "" {
		w.WelcomeText = def.WelcomeText
	}
	if w.ResponseTimeText == "" {
		w.ResponseTimeText = def.ResponseTimeText
	}
	return w
}
