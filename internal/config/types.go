package config

import "time"

// Language is the two-letter tag for the bot's reply language.
type Language string

const (
	LanguageSwahili Language = "sw"
	LanguageEnglish Language = "en"
)

// Config is the top-level districtbot configuration, corresponding to .districtbot.yml.
type Config struct {
	Port            int      `yaml:"port" koanf:"port"`
	DataDir         string   `yaml:"data_dir" koanf:"data_dir"`
	KnowledgeDoc    string   `yaml:"knowledge_doc" koanf:"knowledge_doc"`
	DefaultLanguage Language `yaml:"default_language" koanf:"default_language"`
	SupportPhone    string   `yaml:"support_phone" koanf:"support_phone"`
	APIKey          string   `yaml:"api_key" koanf:"api_key"`

	WhatsApp  WhatsAppConfig  `yaml:"whatsapp" koanf:"whatsapp"`
	OpenAI    OpenAIConfig    `yaml:"openai" koanf:"openai"`
	Site      SiteConfig      `yaml:"site" koanf:"site"`
	Dashboard DashboardConfig `yaml:"dashboard" koanf:"dashboard"`

	// SessionIdleMinutes is the idle window after which a session is treated
	// as freshly reset on the next inbound message.
	SessionIdleMinutes int `yaml:"session_idle_minutes" koanf:"session_idle_minutes"`
	// AnswerSLAMinutes is the promised answer window shown when tracking a
	// ticket. Deployments have run this anywhere from 30 minutes to 24 hours,
	// so it is a named setting rather than a constant.
	AnswerSLAMinutes int `yaml:"answer_sla_minutes" koanf:"answer_sla_minutes"`
	// ResolverWorkers bounds concurrent background answer resolutions.
	ResolverWorkers int `yaml:"resolver_workers" koanf:"resolver_workers"`
}

// WhatsAppConfig holds WhatsApp Cloud API credentials.
type WhatsAppConfig struct {
	PhoneID     string `yaml:"phone_id" koanf:"phone_id"`
	AccessToken string `yaml:"access_token" koanf:"access_token"`
	VerifyToken string `yaml:"verify_token" koanf:"verify_token"`
}

// OpenAIConfig holds the model settings for the knowledge resolver.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key" koanf:"api_key"`
	Model          string `yaml:"model" koanf:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// SiteConfig holds the official-site crawl settings.
type SiteConfig struct {
	URL                string `yaml:"url" koanf:"url"`
	MaxPages           int    `yaml:"max_pages" koanf:"max_pages"`
	MaxChars           int    `yaml:"max_chars" koanf:"max_chars"`
	CacheTTLMinutes    int    `yaml:"cache_ttl_minutes" koanf:"cache_ttl_minutes"`
	PageTimeoutSeconds int    `yaml:"page_timeout_seconds" koanf:"page_timeout_seconds"`
}

// DashboardConfig holds admin dashboard credentials.
type DashboardConfig struct {
	Username string `yaml:"username" koanf:"username"`
	Password string `yaml:"password" koanf:"password"`
}

// SessionIdleTimeout returns the idle threshold as a duration.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// AnswerSLA returns the configured answer window as a duration.
func (c *Config) AnswerSLA() time.Duration {
	return time.Duration(c.AnswerSLAMinutes) * time.Minute
}

// SiteCacheTTL returns how long crawled site text stays fresh.
func (c *Config) SiteCacheTTL() time.Duration {
	return time.Duration(c.Site.CacheTTLMinutes) * time.Minute
}

// ModelTimeout returns the per-call timeout for language model requests.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

// PageTimeout returns the per-page timeout for site crawling.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.Site.PageTimeoutSeconds) * time.Second
}
