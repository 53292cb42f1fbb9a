package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		DataDir:         "data",
		KnowledgeDoc:    "taarifa.md",
		DefaultLanguage: LanguageSwahili,
		WhatsApp:        WhatsAppConfig{},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4.1-mini",
			TimeoutSeconds: 20,
		},
		Site: SiteConfig{
			MaxPages:           8,
			MaxChars:           12000,
			CacheTTLMinutes:    60,
			PageTimeoutSeconds: 10,
		},
		SessionIdleMinutes: 10,
		AnswerSLAMinutes:   24 * 60,
		ResolverWorkers:    4,
	}
}
