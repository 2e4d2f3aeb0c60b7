package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoggingAdapter configures one log output
type LoggingAdapter struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port           int           `yaml:"port" default:"8080"`
		Host           string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout    time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout   time.Duration `yaml:"write_timeout" default:"150s"`
		IdleTimeout    time.Duration `yaml:"idle_timeout" default:"60s"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
		// AnalysisTimeout bounds the endpoints that call the LLM
		AnalysisTimeout time.Duration `yaml:"analysis_timeout" default:"2m"`
		// BulkTimeout bounds a whole bulk auto-apply run
		BulkTimeout    time.Duration `yaml:"bulk_timeout" default:"15m"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		EnableGRPC     bool          `yaml:"enable_grpc" default:"true"`
	} `yaml:"server"`

	Database struct {
		Driver          string        `yaml:"driver" default:"memory"` // memory or postgres
		URL             string        `yaml:"url"`
		MaxConns        int32         `yaml:"max_conns" default:"10"`
		MinConns        int32         `yaml:"min_conns" default:"2"`
		MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" default:"1h"`
		ConnectTimeout  time.Duration `yaml:"connect_timeout" default:"10s"`
	} `yaml:"database"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens" default:"4096"`
		Temperature float32       `yaml:"temperature" default:"0.2"`
		Timeout     time.Duration `yaml:"timeout" default:"90s"`
		RateLimit   int           `yaml:"rate_limit" default:"60"` // requests per minute, 0 disables

		// HealthInterval is how often the provider is re-checked, 0 disables the loop
		HealthInterval time.Duration `yaml:"health_interval" default:"5m"`
	} `yaml:"llm"`

	Upload struct {
		MaxSize int64 `yaml:"max_size" default:"10485760"`
	} `yaml:"upload"`

	BulkApply struct {
		DefaultThreshold int `yaml:"default_threshold" default:"75"`
	} `yaml:"bulk_apply"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []LoggingAdapter `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL        string        `yaml:"url"`
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db" default:"0"`
		Timeout    time.Duration `yaml:"timeout" default:"5s"`
		HistoryTTL time.Duration `yaml:"history_ttl" default:"168h"`
		MaxEntries int           `yaml:"max_entries" default:"50"`
	} `yaml:"redis"`

	Spaces struct {
		BucketURL       string `yaml:"bucket_url"`
		CDNEndpoint     string `yaml:"cdn_endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		AccessKeySecret string `yaml:"access_key_secret"`
		Region          string `yaml:"region" default:"blr1"`
		BucketName      string `yaml:"bucket_name"`
		Endpoint        string `yaml:"endpoint"`
	} `yaml:"spaces"`

	Events struct {
		AMQPURL  string `yaml:"amqp_url"`
		Exchange string `yaml:"exchange" default:"application_events"`
	} `yaml:"events"`
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references, leaving unknown variables as written
func expandEnvVars(s string) string {
	lookup := func(name, original string) string {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
		return original
	}

	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return lookup(match[2:len(match)-1], match)
	})
	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return lookup(match[1:], match)
	})
}

// Default returns a configuration populated with defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 150 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.RequestTimeout = 30 * time.Second
	config.Server.AnalysisTimeout = 2 * time.Minute
	config.Server.BulkTimeout = 15 * time.Minute
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.EnableGRPC = true

	config.Database.Driver = "memory"
	config.Database.MaxConns = 10
	config.Database.MinConns = 2
	config.Database.MaxConnLifetime = time.Hour
	config.Database.ConnectTimeout = 10 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.2
	config.LLM.Timeout = 90 * time.Second
	config.LLM.RateLimit = 60
	config.LLM.HealthInterval = 5 * time.Minute

	config.Upload.MaxSize = 10 << 20

	config.BulkApply.DefaultThreshold = 75

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second
	config.Redis.HistoryTTL = 7 * 24 * time.Hour
	config.Redis.MaxEntries = 50

	config.Spaces.Region = "blr1"

	config.Events.Exchange = "application_events"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		}
	}

	config.loadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.BulkApply.DefaultThreshold < 0 || c.BulkApply.DefaultThreshold > 100 {
		return fmt.Errorf("bulk_apply.default_threshold must be between 0 and 100, got %d", c.BulkApply.DefaultThreshold)
	}

	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive")
	}

	return nil
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SpacesEnabled reports whether upload archiving is configured
func (c *Config) SpacesEnabled() bool {
	return c.Spaces.AccessKeyID != "" && c.Spaces.AccessKeySecret != "" && c.Spaces.BucketName != ""
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	if enableGRPC := os.Getenv("ENABLE_GRPC"); enableGRPC != "" {
		c.Server.EnableGRPC = enableGRPC == "true" || enableGRPC == "1"
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
		// A connection string alone is enough to opt into postgres
		if os.Getenv("DATABASE_DRIVER") == "" {
			c.Database.Driver = "postgres"
		}
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.LLM.Timeout = d
		}
	}

	if rateLimit := os.Getenv("LLM_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			c.LLM.RateLimit = n
		}
	}

	if interval := os.Getenv("LLM_HEALTH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.LLM.HealthInterval = d
		}
	}

	if maxSize := os.Getenv("UPLOAD_MAX_SIZE"); maxSize != "" {
		if n, err := strconv.ParseInt(maxSize, 10, 64); err == nil {
			c.Upload.MaxSize = n
		}
	}

	if threshold := os.Getenv("BULK_DEFAULT_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			c.BulkApply.DefaultThreshold = n
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.Spaces.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.Spaces.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.Spaces.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.Spaces.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.Spaces.Region = region
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.Spaces.BucketName = bucketName
	}

	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		c.Events.AMQPURL = amqpURL
	}

	if exchange := os.Getenv("AMQP_EXCHANGE"); exchange != "" {
		c.Events.Exchange = exchange
	}

	c.loadLoggingAdapterEnvVars()
}

// loadLoggingAdapterEnvVars lets LOG_FILE_PATH point every file adapter at a new location
func (c *Config) loadLoggingAdapterEnvVars() {
	path := os.Getenv("LOG_FILE_PATH")
	if path == "" {
		return
	}

	for i := range c.Logging.Adapters {
		adapter := &c.Logging.Adapters[i]
		if adapter.Type != "file" {
			continue
		}
		if adapter.Options == nil {
			adapter.Options = make(map[string]interface{})
		}
		adapter.Options["file_path"] = path
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
