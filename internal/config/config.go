package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Fitbit   FitbitConfig   `mapstructure:"fitbit"`
	S3       S3Config       `mapstructure:"s3"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release or test
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// FitbitConfig configures the Fitbit OAuth application and Web API access.
type FitbitConfig struct {
	ClientID        string        `mapstructure:"client_id"`
	ClientSecret    string        `mapstructure:"client_secret"`
	RedirectURL     string        `mapstructure:"redirect_url"`
	AuthURL         string        `mapstructure:"auth_url"`
	TokenURL        string        `mapstructure:"token_url"`
	RevokeURL       string        `mapstructure:"revoke_url"`
	APIBaseURL      string        `mapstructure:"api_base_url"`
	Scopes          []string      `mapstructure:"scopes"`
	ExpiryWindow    time.Duration `mapstructure:"expiry_window"` // refresh this long before the token actually expires
	StateExpiration time.Duration `mapstructure:"state_expiration"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RequestsPerSec  float64       `mapstructure:"requests_per_second"`
	Burst           int           `mapstructure:"burst"`
	SuccessRedirect string        `mapstructure:"success_redirect"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory is loaded into the environment first, when present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load() // optional

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, fitbit.client_id -> FITBIT_CLIENT_ID
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil // env vars and defaults are enough
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "runlog")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("fitbit.client_id", "")
	v.SetDefault("fitbit.client_secret", "")
	v.SetDefault("fitbit.redirect_url", "http://localhost:8080/api/v1/fitbit/callback")
	v.SetDefault("fitbit.auth_url", "https://www.fitbit.com/oauth2/authorize")
	v.SetDefault("fitbit.token_url", "https://api.fitbit.com/oauth2/token")
	v.SetDefault("fitbit.revoke_url", "https://api.fitbit.com/oauth2/revoke")
	v.SetDefault("fitbit.api_base_url", "https://api.fitbit.com")
	v.SetDefault("fitbit.scopes", []string{"activity", "profile", "heartrate", "sleep", "location"})
	v.SetDefault("fitbit.expiry_window", "300s")
	v.SetDefault("fitbit.state_expiration", "10m")
	v.SetDefault("fitbit.request_timeout", "15s")
	v.SetDefault("fitbit.requests_per_second", 2.0)
	v.SetDefault("fitbit.burst", 5)
	v.SetDefault("fitbit.success_redirect", "")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
