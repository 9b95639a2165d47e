package ai

import appconfig "github.com/sukalov/lyricforge/internal/config"

// ProjectURL is sent as the HTTP referer so OpenRouter can attribute usage
const ProjectURL = "https://github.com/sukalov/lyricforge"

// NewFromConfig builds a client from the ai section of the configuration
func NewFromConfig(cfg appconfig.AIConfig) (*Client, error) {
	return New(cfg.APIKey,
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithAppTitle(cfg.AppTitle, ProjectURL),
		WithMaxTokens(cfg.MaxTokens),
		WithTemperature(cfg.Temperature),
		WithRetries(cfg.Retries),
		WithTimeout(cfg.Timeout),
	)
}
