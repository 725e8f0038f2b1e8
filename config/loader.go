package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem is what the loader needs from disk. Tests substitute it to hide
// or fake files.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv never overrides variables already set in the process.
func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

type options struct {
	fs         FileSystem
	configFile string
	envFile    string
	aliases    map[string]string
}

// Option customizes LoadConfig.
type Option func(*options)

// WithFileSystem replaces disk access.
func WithFileSystem(fs FileSystem) Option {
	return func(o *options) { o.fs = fs }
}

// WithConfigFile pins the YAML file instead of searching for one.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile pins the .env file instead of searching for one.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithEnvAliases binds environment variables whose names do not follow the
// SECTION_FIELD layout to an explicit config key.
func WithEnvAliases(aliases map[string]string) Option {
	return func(o *options) {
		if o.aliases == nil {
			o.aliases = make(map[string]string, len(aliases))
		}
		for env, key := range aliases {
			o.aliases[env] = key
		}
	}
}

// LoadConfig fills cfg from three layers, each overriding the previous: the
// YAML file, the .env file, then the process environment. Missing files are
// skipped; unreadable ones are errors.
func LoadConfig(service string, cfg any, opts ...Option) error {
	o := options{fs: osFS{}}
	for _, opt := range opts {
		opt(&o)
	}
	configFile, envFile := o.locate(service)

	v := viper.New()
	if configFile != "" && o.fs.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	if envFile != "" && o.fs.Exists(envFile) {
		if err := o.fs.LoadEnv(envFile); err != nil {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnv(v, os.Environ(), o.aliases)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", service, err)
	}
	return nil
}

// locate returns the pinned files, or the nearest existing candidates.
func (o *options) locate(service string) (configFile, envFile string) {
	configFile, envFile = o.configFile, o.envFile
	if configFile == "" {
		configFile = o.first(configCandidates(service))
	}
	if envFile == "" {
		envFile = o.first(envCandidates(service))
	}
	return configFile, envFile
}

func (o *options) first(paths []string) string {
	for _, p := range paths {
		if o.fs.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists config.yml locations, nearest first.
func configCandidates(service string) []string {
	return []string{
		"./cmd/" + service + "/config.yml",
		"../cmd/" + service + "/config.yml",
		"../../cmd/" + service + "/config.yml",
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}
}

// envCandidates lists .env locations. A .env.<service> file anywhere beats
// a plain .env.
func envCandidates(service string) []string {
	dirs := []string{
		"./cmd/" + service, "../cmd/" + service, "../../cmd/" + service,
		"./config", "../config",
		".", "..", "../..",
	}
	paths := make([]string, 0, 2*len(dirs))
	for _, name := range []string{".env." + service, ".env"} {
		for _, dir := range dirs {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

// bindEnv sets each KEY=value under every config key it could address, plus
// its alias if one is registered.
func bindEnv(v *viper.Viper, environ []string, aliases map[string]string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, k := range envKeyVariants(key) {
			v.Set(k, value)
		}
		if target, ok := aliases[key]; ok {
			v.Set(target, value)
		}
	}
}

// envKeyVariants maps an environment variable to the config keys it may
// mean, splitting once at every underscore:
//
//	TENCENT_ASR_REGION -> tencent_asr_region, tencent.asr.region, tencent.asr_region
func envKeyVariants(env string) []string {
	lower := strings.ToLower(env)
	parts := strings.Split(lower, "_")
	out := []string{lower}
	if len(parts) == 1 {
		return out
	}
	seen := map[string]bool{lower: true}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return out
}
