// Package config loads service settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/pkg/contact"
	"github.com/goliatone/go-content/pkg/media"
	"github.com/goliatone/go-content/pkg/redeploy"
	"github.com/goliatone/go-content/pkg/store/kv"
)

// Config is the full service configuration.
type Config struct {
	Env      string          `mapstructure:"env" yaml:"env"`
	Addr     string          `mapstructure:"addr" yaml:"addr"`
	LogLevel string          `mapstructure:"log_level" yaml:"log_level"`
	Server   ServerConfig    `mapstructure:"server" yaml:"server"`
	Content  ContentConfig   `mapstructure:"content" yaml:"content"`
	KV       kv.Config       `mapstructure:"kv" yaml:"kv"`
	Auth     AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Rules    RulesConfig     `mapstructure:"rules" yaml:"rules"`
	Redeploy redeploy.Config `mapstructure:"redeploy" yaml:"redeploy"`
	Media    media.Config    `mapstructure:"media" yaml:"media"`
	Contact  contact.Config  `mapstructure:"contact" yaml:"contact"`
	WhatsApp WhatsAppConfig  `mapstructure:"whatsapp" yaml:"whatsapp"`
}

// ServerConfig bounds HTTP request handling.
type ServerConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxUpload    int64         `mapstructure:"max_upload" yaml:"max_upload"`
}

// ContentConfig covers the resolver and editor endpoints.
type ContentConfig struct {
	Dir             string        `mapstructure:"dir" yaml:"dir"`
	WritePolicy     string        `mapstructure:"write_policy" yaml:"write_policy"`
	EditToken       string        `mapstructure:"edit_token" yaml:"edit_token"`
	AutoRedeploy    bool          `mapstructure:"auto_redeploy" yaml:"auto_redeploy"`
	RedeployTimeout time.Duration `mapstructure:"redeploy_timeout" yaml:"redeploy_timeout"`
}

// AuthConfig holds the admin login settings.
type AuthConfig struct {
	AdminUsername     string        `mapstructure:"admin_username" yaml:"admin_username"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash" yaml:"admin_password_hash"`
	SessionSecret     string        `mapstructure:"session_secret" yaml:"session_secret"`
	SessionMaxAge     time.Duration `mapstructure:"session_max_age" yaml:"session_max_age"`
}

// RulesConfig lists operator rules per section.
type RulesConfig struct {
	Engine   string              `mapstructure:"engine" yaml:"engine"`
	Sections map[string][]string `mapstructure:"sections" yaml:"sections"`
}

// WhatsAppConfig feeds the contact call-to-action link.
type WhatsAppConfig struct {
	Phone   string `mapstructure:"phone" yaml:"phone"`
	Message string `mapstructure:"message" yaml:"message"`
}

// Development reports whether env names a development environment. Any
// other value, blank included, is production.
func (c Config) Development() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// RuleSections converts the configured rule map into typed sections. Unknown
// keys are rejected by Validate.
func (c Config) RuleSections() map[content.Section][]string {
	out := make(map[content.Section][]string, len(c.Rules.Sections))
	for key, exprs := range c.Rules.Sections {
		out[content.Section(strings.ToLower(key))] = exprs
	}
	return out
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if _, err := content.ParseWritePolicy(c.Content.WritePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := kv.ParseFlavor(string(c.KV.Flavor)); err != nil {
		errs = append(errs, err)
	}
	switch c.Rules.Engine {
	case "", content.EngineExpr, content.EngineCEL, content.EngineJS:
	default:
		errs = append(errs, fmt.Errorf("config: unknown rules engine %q", c.Rules.Engine))
	}
	for key := range c.Rules.Sections {
		if _, err := content.ParseSection(key); err != nil {
			errs = append(errs, fmt.Errorf("config: rules: %w", err))
		}
	}
	if c.Auth.AdminUsername != "" && c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("config: auth.session_secret is required when an admin user is configured"))
	}
	return errors.Join(errs...)
}

// envBindings maps keys onto environment variables. Earlier names win.
var envBindings = map[string][]string{
	"env":                      {"APP_ENV", "NODE_ENV"},
	"addr":                     {"ADDR"},
	"log_level":                {"LOG_LEVEL"},
	"content.dir":              {"CONTENT_DIR"},
	"content.write_policy":     {"CONTENT_WRITE_POLICY"},
	"content.edit_token":       {"CONTENT_EDIT_TOKEN"},
	"content.auto_redeploy":    {"AUTO_REDEPLOY"},
	"kv.flavor":                {"KV_FLAVOR"},
	"kv.url":                   {"KV_REST_API_URL", "KV_URL"},
	"kv.token":                 {"KV_REST_API_TOKEN", "KV_TOKEN"},
	"auth.admin_username":      {"ADMIN_USERNAME"},
	"auth.admin_password_hash": {"ADMIN_PASSWORD_HASH"},
	"auth.session_secret":      {"SESSION_SECRET", "NEXTAUTH_SECRET"},
	"rules.engine":             {"RULES_ENGINE"},
	"redeploy.token":           {"VERCEL_TOKEN"},
	"redeploy.project_id":      {"VERCEL_PROJECT_ID"},
	"redeploy.team_id":         {"VERCEL_TEAM_ID"},
	"redeploy.repo_owner":      {"VERCEL_GIT_REPO_OWNER"},
	"redeploy.repo_slug":       {"VERCEL_GIT_REPO_SLUG"},
	"media.cloud_name":         {"CLOUDINARY_CLOUD_NAME"},
	"media.api_key":            {"CLOUDINARY_API_KEY"},
	"media.api_secret":         {"CLOUDINARY_API_SECRET"},
	"contact.access_key":       {"WEB3FORMS_ACCESS_KEY"},
	"whatsapp.phone":           {"WHATSAPP_PHONE_NUMBER"},
	"whatsapp.message":         {"WHATSAPP_MESSAGE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("addr", ":3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_upload", int64(10<<20))
	v.SetDefault("content.dir", "content")
	v.SetDefault("content.write_policy", string(content.PolicyStoreFirst))
	v.SetDefault("content.auto_redeploy", false)
	v.SetDefault("content.redeploy_timeout", 20*time.Second)
	v.SetDefault("kv.flavor", string(kv.FlavorRedis))
	v.SetDefault("auth.session_max_age", 24*time.Hour)
	v.SetDefault("rules.engine", content.EngineExpr)
	v.SetDefault("media.folder", media.DefaultFolder)
	v.SetDefault("whatsapp.message", "Hello, I'm interested in your services.")
}

// Load reads configuration. An empty path looks for landing.yaml in the
// working directory; a missing default file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("landing")
		v.SetConfigType("yaml")
	}

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", describe(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func describe(path string) string {
	if path == "" {
		return "landing.yaml"
	}
	return path
}
