package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/ev-msrp/internal/inference"
)

// Config holds the full application configuration.
type Config struct {
	Model  ModelConfig      `yaml:"model" mapstructure:"model"`
	Server ServerConfig     `yaml:"server" mapstructure:"server"`
	Form   inference.Bounds `yaml:"form" mapstructure:"form"`
	UI     UIConfig         `yaml:"ui" mapstructure:"ui"`
	Log    LogConfig        `yaml:"log" mapstructure:"log"`
}

// ModelConfig locates the trained model artifact.
type ModelConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the form server.
type ServerConfig struct {
	Port             int     `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs  int     `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int     `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // predictions/sec, 0 disables
	RateBurst        int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// UIConfig holds page text.
type UIConfig struct {
	Title     string `yaml:"title" mapstructure:"title"`
	IntroHTML string `yaml:"intro_html" mapstructure:"intro_html"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty file means
// an optional config.yaml in the working directory; a named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("EVMSRP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	bounds := inference.DefaultBounds()
	v.SetDefault("model.path", "model/ev_price_model.json")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("server.write_timeout_secs", 30)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("form.min_model_year", bounds.MinModelYear)
	v.SetDefault("form.max_model_year", bounds.MaxModelYear)
	v.SetDefault("form.min_electric_range", bounds.MinElectricRange)
	v.SetDefault("form.max_electric_range", bounds.MaxElectricRange)
	v.SetDefault("ui.title", "Electric Vehicle Base MSRP Predictor")
	v.SetDefault("ui.intro_html", "Fill in the vehicle details to predict the estimated price.")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would make the form unusable.
func (c *Config) Validate() error {
	if c.Model.Path == "" {
		return eris.New("config: model.path is required")
	}
	if c.Form.MinModelYear > c.Form.MaxModelYear {
		return eris.Errorf("config: form.min_model_year %d exceeds form.max_model_year %d",
			c.Form.MinModelYear, c.Form.MaxModelYear)
	}
	if c.Form.MinElectricRange > c.Form.MaxElectricRange {
		return eris.Errorf("config: form.min_electric_range %d exceeds form.max_electric_range %d",
			c.Form.MinElectricRange, c.Form.MaxElectricRange)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return eris.New("config: server.rate_limit must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
