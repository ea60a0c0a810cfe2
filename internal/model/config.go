package model

const DefaultStorageKey = "tmSmartTasks.items"

type Config struct {
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	Backend    string `yaml:"backend" mapstructure:"backend"` // json, sqlite
	StorageKey string `yaml:"storage_key" mapstructure:"storage_key"`
	Editor     string `yaml:"editor" mapstructure:"editor"`
	LogFile    string `yaml:"log_file" mapstructure:"log_file"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`
	Jira       struct {
		BaseURL string `yaml:"base_url" mapstructure:"base_url"`
		User    string `yaml:"user" mapstructure:"user"`
		Token   string `yaml:"token" mapstructure:"token"`
	} `yaml:"jira" mapstructure:"jira"`
	Sync struct {
		Enable     bool   `yaml:"enable" mapstructure:"enable"`
		Bucket     string `yaml:"bucket" mapstructure:"bucket"`
		Prefix     string `yaml:"prefix" mapstructure:"prefix"`
		AWSProfile string `yaml:"aws_profile" mapstructure:"aws_profile"`
		AWSRegion  string `yaml:"aws_region" mapstructure:"aws_region"`
	} `yaml:"sync" mapstructure:"sync"`
}

func DefaultConfig() Config {
	var c Config
	c.DataDir = "~/.config/jmt/data"
	c.Backend = "json"
	c.StorageKey = DefaultStorageKey
	c.Editor = "vim"
	c.LogFile = "~/.config/jmt/jmt.log"
	c.LogLevel = "info"
	c.Sync.Prefix = "jmt"
	return c
}
