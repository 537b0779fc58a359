// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"fmt"

	"seedfast/dataorch/internal/config"
	"seedfast/dataorch/internal/errors"
)

// New builds the completion client selected by the configuration. Every
// completion of the returned client is bounded by cfg.RequestTimeout.
func New(cfg *config.Config) (Client, error) {
	var c Client
	switch cfg.Provider {
	case config.ProviderXAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = XAIBaseURL
		}
		c = NewOpenAI(cfg.Model, cfg.APIKey, baseURL)
	case config.ProviderAnthropic:
		c = NewAnthropic(cfg.Model, cfg.APIKey, cfg.BaseURL)
	default:
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("unsupported provider %q", cfg.Provider))
	}
	return WithTimeout(c, cfg.RequestTimeout), nil
}
