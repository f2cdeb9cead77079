// Package config loads the community server settings from defaults, an
// optional config file and COMMUNITY_* environment variables.
//
// Database settings are not part of this package. They are read by gz-go
// from its own IGN_DB_* variables.
package config

import (
	"strings"
	"time"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "COMMUNITY"

// Config holds the server settings.
type Config struct {
	// Verbosity is the gz-go logger verbosity (0 to 4).
	Verbosity int `mapstructure:"verbosity"`
	// SystemAdmins is a comma separated list of usernames.
	SystemAdmins string `mapstructure:"system_admins"`
	// JWTPublicKey is the RSA256 public key used to validate JWTs.
	JWTPublicKey string `mapstructure:"jwt_public_key"`

	S3 S3Config `mapstructure:"s3"`

	// ElasticAddress is the Elasticsearch URL. Topic search falls back to SQL
	// when empty.
	ElasticAddress  string `mapstructure:"elastic_address"`
	ElasticUsername string `mapstructure:"elastic_username"`
	ElasticPassword string `mapstructure:"elastic_password"`

	// LookupsTTL is how long countries and roles are cached. Zero disables
	// expiration.
	LookupsTTL time.Duration `mapstructure:"lookups_ttl"`

	// RecomputeRatingsOnStart runs the user rating repair job at startup.
	RecomputeRatingsOnStart bool `mapstructure:"recompute_ratings_on_start"`
	// MigrateCasbin grants authors write permission on their existing content
	// at startup.
	MigrateCasbin bool `mapstructure:"migrate_casbin"`

	// PageSize is the default number of items per page.
	PageSize int64 `mapstructure:"page_size"`
}

// S3Config configures the gallery bucket.
type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	// ForcePathStyle is needed by S3 compatible servers such as minio.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// HasStorage returns true if a gallery bucket is configured.
func (c *Config) HasStorage() bool {
	return c.S3.Bucket != ""
}

// Load reads the configuration. If file is not empty it must exist, otherwise
// a config.yaml in the working directory or in ./config is used if present.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	configureViper(v, file)
	if err := readConfiguration(v, file); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("verbosity", gz.VerbosityWarning)
	v.SetDefault("system_admins", "")
	v.SetDefault("jwt_public_key", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("elastic_address", "")
	v.SetDefault("elastic_username", "")
	v.SetDefault("elastic_password", "")
	v.SetDefault("lookups_ttl", "10m")
	v.SetDefault("recompute_ratings_on_start", false)
	v.SetDefault("migrate_casbin", false)
	v.SetDefault("page_size", 20)
}

func configureViper(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func readConfiguration(v *viper.Viper, file string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && file == "" {
			return nil
		}
		return errors.Wrap(err, "config file error")
	}
	return nil
}

func (c *Config) validate() error {
	if c.Verbosity < 0 || c.Verbosity > gz.VerbosityDebug {
		return errors.Errorf("invalid verbosity %d", c.Verbosity)
	}
	if c.PageSize <= 0 {
		return errors.Errorf("invalid page size %d", c.PageSize)
	}
	if c.LookupsTTL < 0 {
		return errors.New("lookups ttl cannot be negative")
	}
	return nil
}
