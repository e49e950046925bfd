package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath     string
	FixturesFolder  string
	DownloadsFolder string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors     int
	Environment    string
	TestTimeout    time.Duration
	NoTestTimeout  bool
	SuiteTimeout   time.Duration
	CommandTimeout time.Duration
	Retries        int

	// Environment profile
	BaseURLs  BaseURLs
	Users     map[string]User
	UserAgent string

	// Paths to ignore when scanning fixtures
	PathsToIgnore []string

	// Env is the merged process and .env environment
	Env map[string]string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors    int
	NameFilter    string
	Grep          string
	Environment   string
	TestTimeout   int // minutes, 0 keeps the configured value
	NoTestTimeout bool
	Retries       int // negative keeps the configured value
	FailFast      bool
	OnlyFailed    bool
	OpenFaills    bool
	TestCases     bool
	Publish       bool
	MetricsFile   string
	Verbose       bool
}

// envOverrides are read from E2E_* variables.
type envOverrides struct {
	Environment    null.String `envconfig:"E2E_ENVIRONMENT"`
	TestTimeout    null.Int    `envconfig:"E2E_TEST_TIMEOUT"`
	NoTestTimeout  null.Bool   `envconfig:"E2E_NO_TEST_TIMEOUT"`
	CommandTimeout null.Int    `envconfig:"E2E_TIMEOUT"`
	Retries        null.Int    `envconfig:"E2E_RETRIES"`
	Processors     null.Int    `envconfig:"E2E_PROCESSORS"`
	FixturesFolder null.String `envconfig:"E2E_FIXTURES_FOLDER"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:     DefaultProjectPath,
		FixturesFolder:  DefaultFixturesFolder,
		DownloadsFolder: DefaultDownloadsFolder,
		OutputJSONFile:  DefaultOutputJSONFile,
		OutputJSONDir:   DefaultOutputJSONDir,
		Processors:      DefaultProcessors,
		Environment:     DefaultEnvironment,
		TestTimeout:     DefaultTestTimeout,
		SuiteTimeout:    DefaultSuiteTimeout,
		CommandTimeout:  DefaultCommandTimeout,
		Retries:         DefaultRetries,
		Env:             map[string]string{},
		Flags:           Flags{Processors: DefaultProcessors, Retries: -1},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Environ merges the project's .env file with the process environment.
// Process variables win, matching godotenv.Load.
func Environ(projectPath string) map[string]string {
	env, err := godotenv.Read(filepath.Join(projectPath, ".env"))
	if err != nil {
		// .env file might not exist, that's okay - use environment variables
		env = map[string]string{}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Load creates a config from defaults, the environment profile, env and flags,
// in increasing precedence.
func Load(flags Flags, env map[string]string, log logrus.FieldLogger) (*Config, error) {
	cfg := New()
	cfg.Flags = flags
	if env != nil {
		cfg.Env = env
	}

	overrides, err := cfg.readEnv()
	if err != nil {
		return nil, err
	}
	if overrides.Environment.Valid && overrides.Environment.String != "" {
		cfg.Environment = overrides.Environment.String
	}
	if flags.Environment != "" {
		cfg.Environment = flags.Environment
	}
	cfg.Environment = strings.ToLower(cfg.Environment)

	profile, err := LoadProfile(cfg.Environment)
	if err != nil {
		return nil, err
	}
	cfg.applyProfile(profile, log)
	cfg.applyEnv(overrides)
	cfg.applyFlags()

	return cfg, nil
}

func (c *Config) readEnv() (envOverrides, error) {
	var o envOverrides
	lookup := func(key string) (string, bool) {
		v, ok := c.Env[key]
		return v, ok
	}
	if err := envconfig.Process("", &o, lookup); err != nil {
		return o, fmt.Errorf("read environment overrides: %w", err)
	}
	return o, nil
}

func (c *Config) applyProfile(p *Profile, log logrus.FieldLogger) {
	c.BaseURLs = p.BaseURLs
	c.UserAgent = p.UserAgent
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if p.TestTimeout > 0 {
		c.TestTimeout = time.Duration(p.TestTimeout) * time.Minute
	}
	c.Users = p.Users
	if len(c.Users) == 0 {
		log.WithField("environment", c.Environment).Warn("User config is not supported. Value will be undefined.")
	}
}

func (c *Config) applyEnv(o envOverrides) {
	if o.TestTimeout.Valid && o.TestTimeout.Int64 > 0 {
		c.TestTimeout = time.Duration(o.TestTimeout.Int64) * time.Minute
	}
	if o.NoTestTimeout.Valid {
		c.NoTestTimeout = o.NoTestTimeout.Bool
	}
	if o.CommandTimeout.Valid && o.CommandTimeout.Int64 > 0 {
		c.CommandTimeout = time.Duration(o.CommandTimeout.Int64) * time.Millisecond
	}
	if o.Retries.Valid && o.Retries.Int64 >= 0 {
		c.Retries = int(o.Retries.Int64)
	}
	if o.Processors.Valid && o.Processors.Int64 > 0 {
		c.Processors = int(o.Processors.Int64)
	}
	if o.FixturesFolder.Valid && o.FixturesFolder.String != "" {
		c.FixturesFolder = o.FixturesFolder.String
	}
}

func (c *Config) applyFlags() {
	f := c.Flags
	if f.Processors > 0 {
		c.Processors = f.Processors
	}
	if f.TestTimeout > 0 {
		c.TestTimeout = time.Duration(f.TestTimeout) * time.Minute
	}
	if f.NoTestTimeout {
		c.NoTestTimeout = true
	}
	if f.Retries >= 0 {
		c.Retries = f.Retries
	}
}

// GetOutputPath returns the full path to the output JSON file (under project so run and faills use the same file).
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetFixturesPath returns the fixtures folder, relative to the project unless absolute
func (c *Config) GetFixturesPath() string {
	return c.projectRelative(c.FixturesFolder)
}

// GetDownloadsPath returns the downloads folder, relative to the project unless absolute
func (c *Config) GetDownloadsPath() string {
	return c.projectRelative(c.DownloadsFolder)
}

func (c *Config) projectRelative(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// GetUser returns the named user of the active environment.
func (c *Config) GetUser(name string) (User, error) {
	if len(c.Users) == 0 {
		return User{}, fmt.Errorf("users not configured for environment %s", c.Environment)
	}
	u, ok := c.Users[name]
	if !ok {
		return User{}, fmt.Errorf("user %q not configured for environment %s", name, c.Environment)
	}
	return u, nil
}
