package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("auth-gateway version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerMode selects the deployment posture. Production mode enforces
// secure-channel-only session cookies.
type ServerMode string

const (
	ServerModeDevelopment ServerMode = "development"
	ServerModeProduction  ServerMode = "production"
)

type ServerConfig struct {
	Host    string     `mapstructure:"host"`
	Port    int        `mapstructure:"port"`
	Mode    ServerMode `mapstructure:"mode"`
	Timeout string     `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

type OAuthConfig struct {
	Provider     string   `mapstructure:"provider"` // spotify, github, or custom
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	AuthURL      string   `mapstructure:"auth_url"`      // required when provider is custom
	TokenURL     string   `mapstructure:"token_url"`     // required when provider is custom
	UserInfoURL  string   `mapstructure:"user_info_url"` // required when provider is custom
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`
	ConsumerURL  string   `mapstructure:"consumer_url"` // consuming application base URL
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PendingAuthTTL is how long the state token and code verifier survive between
// the login redirect and the callback.
const PendingAuthTTL = 5 * time.Minute

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("mode", string(ServerModeDevelopment), "Server mode (development|production)")
	pflag.String("database-path", "", "Path to the SQLite database file")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("AUTH_GATEWAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	// Load ./config.yaml first
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AddConfigPath("/etc/auth-gateway")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Loading additional config files
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		viper.SetConfigFile("/config/config.yaml")
		// Merge /config/config.yaml (overrides overlapping keys)
		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Set server mode from flag
	if mode := viper.GetString("mode"); mode != "" {
		switch ServerMode(mode) {
		case ServerModeDevelopment, ServerModeProduction:
			config.Server.Mode = ServerMode(mode)
		}
	}

	if dbPath := viper.GetString("database-path"); dbPath != "" {
		config.Database.Path = dbPath
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the flow cannot run with. Misconfiguration
// is a startup concern: the process fails fast here instead of surfacing
// errors on the first login attempt.
func (c *Config) Validate() error {
	if c.OAuth.ClientID == "" {
		return fmt.Errorf("oauth.client_id is required, please adjust the config or set AUTH_GATEWAY_OAUTH_CLIENT_ID")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("oauth.client_secret is required, please adjust the config or set AUTH_GATEWAY_OAUTH_CLIENT_SECRET")
	}
	if c.OAuth.RedirectURL == "" {
		return fmt.Errorf("oauth.redirect_url is required, please adjust the config or set AUTH_GATEWAY_OAUTH_REDIRECT_URL")
	}
	if c.OAuth.ConsumerURL == "" {
		return fmt.Errorf("oauth.consumer_url is required, please adjust the config or set AUTH_GATEWAY_OAUTH_CONSUMER_URL")
	}
	if c.OAuth.Provider == "" || c.OAuth.Provider == "custom" {
		if c.OAuth.AuthURL == "" || c.OAuth.TokenURL == "" || c.OAuth.UserInfoURL == "" {
			return fmt.Errorf("oauth.auth_url, oauth.token_url and oauth.user_info_url are required for a custom provider")
		}
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required, please adjust the config or pass --database-path or AUTH_GATEWAY_DATABASE_PATH")
	}
	return nil
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == ServerModeProduction
}
