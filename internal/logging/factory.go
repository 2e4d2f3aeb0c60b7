package logging

import (
	"fmt"
	"time"

	"applytrack/internal/logging/adapters"
	"applytrack/internal/logging/types"
)

// AdapterFactory builds adapters from their configuration
type AdapterFactory struct{}

func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{}
}

// CreateAdapter supports the "stdout" and "file" adapter types
func (f *AdapterFactory) CreateAdapter(adapterConfig types.AdapterConfig) (types.LogAdapter, error) {
	switch adapterConfig.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(adapterConfig.Name, adapters.StdoutConfig{
			Format:    getStringOption(adapterConfig.Options, "format", "json"),
			Colorized: getBoolOption(adapterConfig.Options, "colorized", false),
		}), nil
	case "file":
		return adapters.NewFileAdapter(adapterConfig.Name, adapters.FileConfig{
			FilePath:       getStringOption(adapterConfig.Options, "file_path", ""),
			Format:         getStringOption(adapterConfig.Options, "format", "json"),
			MaxSize:        getInt64Option(adapterConfig.Options, "max_size", 0),
			MaxAge:         getDurationOption(adapterConfig.Options, "max_age", 0),
			MaxBackups:     getIntOption(adapterConfig.Options, "max_backups", 10),
			Compress:       getBoolOption(adapterConfig.Options, "compress", false),
			CreateDirs:     getBoolOption(adapterConfig.Options, "create_dirs", true),
			SyncOnWrite:    getBoolOption(adapterConfig.Options, "sync_on_write", false),
			RotationPolicy: getStringOption(adapterConfig.Options, "rotation_policy", "size"),
		})
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", adapterConfig.Type)
	}
}

func getStringOption(options map[string]interface{}, key string, defaultValue string) string {
	if str, ok := options[key].(string); ok {
		return str
	}
	return defaultValue
}

func getIntOption(options map[string]interface{}, key string, defaultValue int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

func getInt64Option(options map[string]interface{}, key string, defaultValue int64) int64 {
	switch v := options[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return defaultValue
}

func getBoolOption(options map[string]interface{}, key string, defaultValue bool) bool {
	if b, ok := options[key].(bool); ok {
		return b
	}
	return defaultValue
}

// getDurationOption accepts "30s" style strings
func getDurationOption(options map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	if str, ok := options[key].(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d
		}
	}
	return defaultValue
}
