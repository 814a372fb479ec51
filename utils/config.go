package utils

import (
	"log"
	"os"
	"path"

	"github.com/spf13/viper"
)

// Config is the configuration for the application
type Config struct {
	SiteRoot   string   `mapstructure:"site_root"`   // Root of the site checkout
	ContentDir string   `mapstructure:"content_dir"` // Directory of markdown articles, relative to site_root
	IndexURL   string   `mapstructure:"index_url"`   // URL of the published search index
	IndexPath  string   `mapstructure:"index_path"`  // Local path of the search index
	Editor     string   `mapstructure:"editor"`      // Editor to open article sources with
	Extensions []string `mapstructure:"extensions"`  // Extensions of articles to be indexed
	MaxResults int      `mapstructure:"max_results"` // Result list cap
}

// NewConfig returns a new Config object by reading from the config file
func NewConfig() *Config {
	homedir, _ := os.UserHomeDir()
	configPath := path.Join(homedir, "/.config/site_search/config.yaml")
	viper.SetConfigFile(configPath)

	viper.SetDefault("content_dir", "content")
	viper.SetDefault("extensions", []string{".md"})
	viper.SetDefault("index_path", "index.json")
	viper.SetDefault("max_results", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal("failed to read config file", err)
	}

	config := &Config{}
	err := viper.Unmarshal(config)
	if err != nil {
		log.Fatal("unable to parse the config file", err)
	}

	return config
}

// ContentRoot is the absolute content directory.
func (c *Config) ContentRoot() string {
	return path.Join(c.SiteRoot, c.ContentDir)
}

// IndexFile is the absolute path of the local index file.
func (c *Config) IndexFile() string {
	if path.IsAbs(c.IndexPath) {
		return c.IndexPath
	}
	return path.Join(c.SiteRoot, c.IndexPath)
}
