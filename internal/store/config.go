package store

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/mitchellh/mapstructure"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"gopkg.in/yaml.v3"
)

func GetConfigPath() (string, error) {
	// Check if the environment variable `JMT_CONFIG` is set
	if customConfig := os.Getenv("JMT_CONFIG"); customConfig != "" {
		return customConfig, nil
	}

	var configPath string

	switch runtime.GOOS {
	case "windows":
		// Use `APPDATA\jmt\config.yaml` if available
		appData := os.Getenv("APPDATA")
		if appData != "" {
			configPath = filepath.Join(appData, "jmt", "config.yaml")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", err)
			}
			configPath = filepath.Join(homeDir, "AppData", "Roaming", "jmt", "config.yaml")
		}

	default: // macOS / Linux
		configDir, err := os.UserConfigDir()
		if err != nil {
			// Fallback to `~/.jmt/config.yaml` if `os.UserConfigDir()` fails
			homeDir, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", homeErr)
			}
			configPath = filepath.Join(homeDir, ".jmt", "config.yaml")
		} else {
			configPath = filepath.Join(configDir, "jmt", "config.yaml")
		}
	}

	return configPath, nil
}

// Expand `~` to the home directory (Windows included)
func ExpandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// LoadConfig reads config.yaml. A missing file yields the defaults so a fresh
// install works before `jmt init`.
func LoadConfig() (*model.Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

func LoadConfigFrom(configPath string) (*model.Config, error) {
	config := model.DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file (%s): %w", configPath, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if token := os.Getenv("JMT_JIRA_TOKEN"); token != "" {
		config.Jira.Token = token
	}
	if config.StorageKey == "" {
		config.StorageKey = model.DefaultStorageKey
	}

	// Expand `~` in paths
	config.DataDir = ExpandHomeDir(config.DataDir)
	config.LogFile = ExpandHomeDir(config.LogFile)

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return &config, nil
}

func ValidateConfig(config model.Config) error {
	switch config.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("unknown backend %q (want json or sqlite)", config.Backend)
	}
	if config.Jira.BaseURL != "" && !govalidator.IsURL(config.Jira.BaseURL) {
		return fmt.Errorf("jira.base_url is not a valid URL: %q", config.Jira.BaseURL)
	}
	return nil
}

func SaveConfig(config model.Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigTo(configPath, config)
}

func SaveConfigTo(configPath string, config model.Config) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to convert config to YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file (%s): %w", configPath, err)
	}
	return nil
}

// ConfigFields lists the dotted yaml paths accepted by GetConfigField and
// SetConfigField, in display order.
func ConfigFields() []string {
	return []string{
		"data_dir", "backend", "storage_key", "editor", "log_file", "log_level",
		"jira.base_url", "jira.user", "jira.token",
		"sync.enable", "sync.bucket", "sync.prefix", "sync.aws_profile", "sync.aws_region",
	}
}

func configToMap(config model.Config) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := mapstructure.Decode(config, &out); err != nil {
		return nil, fmt.Errorf("failed to flatten config: %w", err)
	}
	return out, nil
}

func GetConfigField(config model.Config, path string) (string, error) {
	m, err := configToMap(config)
	if err != nil {
		return "", err
	}
	parts := strings.Split(path, ".")
	var cur interface{} = m
	for _, p := range parts {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("unknown config field %q", path)
		}
		if cur, ok = node[p]; !ok {
			return "", fmt.Errorf("unknown config field %q", path)
		}
	}
	if _, nested := cur.(map[string]interface{}); nested {
		return "", fmt.Errorf("config field %q is a section", path)
	}
	return fmt.Sprint(cur), nil
}

// SetConfigField assigns a string value to a dotted yaml path; booleans are
// converted by mapstructure's weak typing.
func SetConfigField(config *model.Config, path, value string) error {
	if _, err := GetConfigField(*config, path); err != nil {
		return err
	}
	m, err := configToMap(*config)
	if err != nil {
		return err
	}
	parts := strings.Split(path, ".")
	node := m
	for _, p := range parts[:len(parts)-1] {
		node = node[p].(map[string]interface{})
	}
	node[parts[len(parts)-1]] = value

	var next model.Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &next,
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("invalid value for %s: %w", path, err)
	}
	if err := ValidateConfig(next); err != nil {
		return err
	}
	*config = next
	return nil
}
