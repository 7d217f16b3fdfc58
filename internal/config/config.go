// Package config loads the updater's settings from the environment and an optional YAML file.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Environment variables read by Load.
const (
	EnvEmail  = "CLOUDFLARE_API_EMAIL"
	EnvKey    = "CLOUDFLARE_API_KEY"
	EnvZone   = "CLOUDFLARE_ZONE_NAME"
	EnvRecord = "CLOUDFLARE_DNS_RECORD"

	// EnvAPIURL optionally replaces the Cloudflare API root, e.g. for a proxy.
	EnvAPIURL = "CLOUDFLARE_API_URL"
)

// Config holds everything needed for one update run.
type Config struct {
	Email      string   `yaml:"email"`
	Key        string   `yaml:"key"`
	Zone       string   `yaml:"zone"`
	Record     string   `yaml:"record"`
	APIURL     string   `yaml:"api_url"`
	IPServices []string `yaml:"ip_services"`
}

// MissingError lists required settings that were not provided.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variable(s): %s", strings.Join(e.Names, ", "))
}

// Load reads the YAML file at path (if path is not empty) and then applies environment variables on top.
// getenv is usually os.Getenv.
func Load(getenv func(string) string, path string) (Config, error) {
	var c Config
	if path != "" {
		var err error
		if c, err = readFile(path); err != nil {
			return Config{}, err
		}
	}

	for _, v := range []struct {
		env string
		dst *string
	}{
		{EnvEmail, &c.Email},
		{EnvKey, &c.Key},
		{EnvZone, &c.Zone},
		{EnvRecord, &c.Record},
		{EnvAPIURL, &c.APIURL},
	} {
		if s := getenv(v.env); s != "" {
			*v.dst = s
		}
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	var missing []string
	if c.Email == "" {
		missing = append(missing, EnvEmail)
	}
	if c.Key == "" {
		missing = append(missing, EnvKey)
	}
	if c.Zone == "" {
		missing = append(missing, EnvZone)
	}
	if c.Record == "" {
		missing = append(missing, EnvRecord)
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

func readFile(path string) (Config, error) {
	if err := verifyPermissions(path); err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return c, nil
}

// verifyPermissions rejects config files that other users could read, since they may hold the API key.
func verifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking config file permissions: %w", err)
	}

	perms := info.Mode().Perm()
	// Error messages will state that we want 0600,
	// but we'll also accept 0400 which is even more restricted.
	if perms != 0600 && perms != 0400 {
		return fmt.Errorf("invalid permissions for \"%s\": expected file permissions \"-rw-------\"; found \"%s\"", path, fs.FileMode(perms))
	}
	return nil
}
