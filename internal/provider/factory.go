package provider

import "cosmos/internal/config"

// NewClientFromConfig constructs the Client for cfg.Provider.Provider. Every
// provider currently known to cosmos speaks the OpenAI-compatible wire
// format, so one implementation serves all of them with a different
// BaseURL/Model/APIKey.
func NewClientFromConfig(cfg *config.Config) Client {
	return NewOpenAIClient(Config{
		Slug:    cfg.Provider.Provider,
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Model:   cfg.Provider.Model,
		Timeout: cfg.GetProviderTimeout(),
	})
}

// NewSpeedTierRouter builds a Router across cfg.Provider.SpeedTierChain,
// reusing per-provider base URL/model/timeout from cfg for every chain
// member since cosmos presently configures one provider at a time; distinct
// endpoints per chain slug can be layered in by extending ProviderConfig.
func NewSpeedTierRouter(cfg *config.Config) *Router {
	clients := make([]Client, 0, len(cfg.Provider.SpeedTierChain))
	for _, slug := range cfg.Provider.SpeedTierChain {
		clients = append(clients, NewOpenAIClient(Config{
			Slug:    slug,
			APIKey:  cfg.Provider.APIKey,
			BaseURL: cfg.Provider.BaseURL,
			Model:   cfg.Provider.Model,
			Timeout: cfg.GetProviderTimeout(),
		}))
	}
	return NewRouter(clients...)
}
