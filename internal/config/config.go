package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every craftstage command.
type Config struct {
	// Root is the installation root owning libraries, assets, versions and runtimes.
	Root string `yaml:"root"`
	// CatalogURL points at the release catalog document.
	CatalogURL string `yaml:"catalog_url"`
	// AssetsURL is the base URL content-addressed asset objects are served from.
	AssetsURL string `yaml:"assets_url"`
	// RuntimeManifestURL points at the platform→component runtime manifest.
	RuntimeManifestURL string `yaml:"runtime_manifest_url"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `yaml:"timeout"`
	// Concurrency is the number of parallel downloads per install phase.
	Concurrency int `yaml:"concurrency"`
	// MaxMemory is passed to the JVM as -Xmx.
	MaxMemory string `yaml:"max_memory"`
	// Player is the offline profile passed to the game.
	Player Player `yaml:"player"`
}

// Player describes the profile arguments of the launched game.
type Player struct {
	Username    string `yaml:"username"`
	UUID        string `yaml:"uuid"`
	AccessToken string `yaml:"access_token"`
	UserType    string `yaml:"user_type"`
}

const (
	// DefaultConfigFilename is looked up when no explicit path is given.
	DefaultConfigFilename = "craftstage.yaml"

	// DefaultRoot is the installation root used when none is configured.
	DefaultRoot = ".minecraft"

	// DefaultCatalogURL is the upstream release catalog.
	DefaultCatalogURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

	// DefaultAssetsURL is the upstream asset object host.
	DefaultAssetsURL = "https://resources.download.minecraft.net"

	// DefaultRuntimeManifestURL is the upstream Java runtime manifest.
	DefaultRuntimeManifestURL = "https://launchermeta.mojang.com/v1/products/java-runtime/" +
		"2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"

	// DefaultTimeout bounds a single request; large runtime files need minutes on slow links.
	DefaultTimeout = 5 * time.Minute

	// DefaultConcurrency is the size of the download worker pools.
	DefaultConcurrency = 8

	// DefaultMaxMemory is the default JVM heap ceiling.
	DefaultMaxMemory = "1G"

	// DefaultFilePermissions is used for files written by craftstage itself.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrExists is returned by Init when the configuration file is already present.
	ErrExists = errors.New("configuration file already exists")
	// errBadMemory is returned for heap sizes the JVM would reject.
	errBadMemory = errors.New("max_memory must look like 512M or 2G")

	// memoryPattern matches JVM heap sizes such as 1024M or 2G.
	memoryPattern = regexp.MustCompile(`^[1-9][0-9]*[kKmMgG]?$`)
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults alone always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from path and validates it.
// An empty path loads DefaultConfigFilename when it exists and defaults otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultConfigFilename); err != nil {
			return Default(), nil
		}

		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path in YAML format.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Init writes the default configuration to path, with root replacing the
// default installation root when set. An existing file is kept unless overwrite
// is true. It returns the path written.
func Init(path, root string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("%s: %w", path, ErrExists)
	}

	cfg := Default()
	if root != "" {
		cfg.Root = root
	}

	if err := Save(path, cfg); err != nil {
		return "", err
	}

	return path, nil
}

// Validate fills defaults and checks URLs and sizes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}

	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
	}

	if cfg.AssetsURL == "" {
		cfg.AssetsURL = DefaultAssetsURL
	}

	if cfg.RuntimeManifestURL == "" {
		cfg.RuntimeManifestURL = DefaultRuntimeManifestURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if cfg.MaxMemory == "" {
		cfg.MaxMemory = DefaultMaxMemory
	}

	if !memoryPattern.MatchString(cfg.MaxMemory) {
		return fmt.Errorf("%q: %w", cfg.MaxMemory, errBadMemory)
	}

	cfg.Player.applyDefaults()

	for name, raw := range map[string]string{
		"catalog_url":          cfg.CatalogURL,
		"assets_url":           cfg.AssetsURL,
		"runtime_manifest_url": cfg.RuntimeManifestURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}

// applyDefaults fills an offline profile.
func (p *Player) applyDefaults() {
	if p.Username == "" {
		p.Username = "Player"
	}

	if p.UUID == "" {
		p.UUID = "00000000-0000-0000-0000-000000000000"
	}

	if p.AccessToken == "" {
		p.AccessToken = "0"
	}

	if p.UserType == "" {
		p.UserType = "legacy"
	}
}
