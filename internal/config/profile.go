package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed env/*.yaml
var profiles embed.FS

var environmentName = regexp.MustCompile(`^[a-z0-9_-]+$`)

// DefaultUserAgent is sent by specs when the profile does not set one
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) e2ekit Chrome/120.0 Safari/537.36"

// BaseURLs are the entry points of the application under test
type BaseURLs struct {
	API string `yaml:"api_url"`
	App string `yaml:"app_url"`
}

// User is a login used by specs
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Profile is the per-environment configuration file
type Profile struct {
	BaseURLs  BaseURLs        `yaml:"base_urls"`
	Users     map[string]User `yaml:"users"`
	UserAgent string          `yaml:"user_agent"`
	// TestTimeout in minutes, zero keeps the default
	TestTimeout int `yaml:"test_timeout"`
}

// LoadProfile reads the embedded profile of environment env.
func LoadProfile(env string) (*Profile, error) {
	if !environmentName.MatchString(env) {
		return nil, fmt.Errorf("invalid environment name %q", env)
	}
	data, err := profiles.ReadFile("env/" + env + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Base urls config for the %s is required", env)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s profile: %w", env, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s profile: %w", env, err)
	}
	if p.BaseURLs.API == "" && p.BaseURLs.App == "" {
		return nil, fmt.Errorf("Base urls config for the %s is required", env)
	}
	return &p, nil
}
