package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DISTRICTBOT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DISTRICTBOT_WHATSAPP_PHONE_ID ->
	// whatsapp.phone_id, DISTRICTBOT_PORT -> port, etc. Only the sub-section
	// prefixes become dots so that keys like session_idle_minutes survive.
	if err := k.Load(env.Provider("DISTRICTBOT_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DISTRICTBOT_"))
		for _, section := range []string{"whatsapp_", "openai_", "site_", "dashboard_"} {
			if strings.HasPrefix(key, section) {
				return strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// The OpenAI key may also arrive via the conventional variable.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.DefaultLanguage != LanguageSwahili && c.DefaultLanguage != LanguageEnglish {
		return fmt.Errorf("invalid default_language %q: must be sw or en", c.DefaultLanguage)
	}
	if c.SessionIdleMinutes <= 0 {
		return fmt.Errorf("session_idle_minutes must be positive")
	}
	if c.AnswerSLAMinutes <= 0 {
		return fmt.Errorf("answer_sla_minutes must be positive")
	}
	if c.Site.MaxPages <= 0 {
		return fmt.Errorf("site.max_pages must be positive")
	}
	if c.Site.MaxChars <= 0 {
		return fmt.Errorf("site.max_chars must be positive")
	}
	if c.ResolverWorkers <= 0 {
		return fmt.Errorf("resolver_workers must be positive")
	}
	return nil
}
