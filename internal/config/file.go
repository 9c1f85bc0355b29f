package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ConfigFile represents a .kmfetchrc bootstrap configuration file —
// defaults for the process flags above, not the domain Config document
// (that one lives under <data>/config.json and is owned by storage.Storage).
type ConfigFile struct {
	Defaults map[string]string
	Auth     map[string]string
}

// LoadConfigFile loads configuration from .kmfetchrc, trying ./.kmfetchrc
// then ~/.kmfetchrc, the same search order the teacher used for .downurlrc.
func LoadConfigFile() (*ConfigFile, error) {
	paths := []string{
		".kmfetchrc",
		filepath.Join(os.Getenv("HOME"), ".kmfetchrc"),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return parseConfigFile(path)
		}
	}

	return &ConfigFile{
		Defaults: make(map[string]string),
		Auth:     make(map[string]string),
	}, nil
}

// parseConfigFile parses a simple INI-style config file.
func parseConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cf := &ConfigFile{
		Defaults: make(map[string]string),
		Auth:     make(map[string]string),
	}

	lines := strings.Split(string(data), "\n")
	currentSection := ""

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.Trim(line, "[]")
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"'")

		if strings.Contains(value, "${") {
			value = os.ExpandEnv(value)
		}

		switch currentSection {
		case "defaults":
			cf.Defaults[key] = value
		case "auth":
			cf.Auth[key] = value
		}
	}

	return cf, nil
}

// ApplyToConfig applies config file settings to Config, for every field
// still at its flag-parsed default.
func (cf *ConfigFile) ApplyToConfig(c *Config) {
	if c.DataDir == "./data" && cf.Defaults["data_dir"] != "" {
		c.DataDir = cf.Defaults["data_dir"]
	}
	if c.Workers == 4 && cf.Defaults["workers"] != "" {
		if workers, err := strconv.Atoi(cf.Defaults["workers"]); err == nil {
			c.Workers = workers
		}
	}
	if c.RequestTimeout == 30*time.Second && cf.Defaults["timeout"] != "" {
		if timeout, err := time.ParseDuration(cf.Defaults["timeout"]); err == nil {
			c.RequestTimeout = timeout
		}
	}
	if c.RPCPort == 18861 && cf.Defaults["rpc_port"] != "" {
		if port, err := strconv.Atoi(cf.Defaults["rpc_port"]); err == nil {
			c.RPCPort = port
		}
	}
	if c.BaseURL == "https://kemono.cr" && cf.Defaults["base_url"] != "" {
		c.BaseURL = cf.Defaults["base_url"]
	}

	if c.AuthBearer == "" && cf.Auth["bearer"] != "" {
		c.AuthBearer = cf.Auth["bearer"]
	}
	if c.AuthBasic == "" && cf.Auth["basic"] != "" {
		c.AuthBasic = cf.Auth["basic"]
	}
	if c.CookieString == "" && cf.Auth["cookie"] != "" {
		c.CookieString = cf.Auth["cookie"]
	}
}
