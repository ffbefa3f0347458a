// Package config loads the pagecached configuration from a YAML file and
// PAGECACHE_* environment variables. Environment wins over the file; nested
// keys use "_" (PAGECACHE_CACHE_STORE_KIND=redis).
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/pagecache"
	"github.com/unkn0wn-root/pagecache/store"
)

const envPrefix = "PAGECACHE"

type Config struct {
	// Listen is the HTTP bind address.
	Listen string `mapstructure:"listen" yaml:"listen"`
	// Content is the directory of markdown pages served by the demo renderer.
	Content string `mapstructure:"content" yaml:"content"`
	Log     Log    `mapstructure:"log" yaml:"log"`
	Cache   Cache  `mapstructure:"cache" yaml:"cache"`
}

type Log struct {
	Level       string `mapstructure:"level" yaml:"level"` // debug|info|warn|error
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Cache is the file form of pagecache.Options.
type Cache struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Pages are prefixes; entries starting with "re:" are regular expressions.
	Pages          []string      `mapstructure:"pages" yaml:"pages"`
	UseHostPrefix  bool          `mapstructure:"use_host_prefix" yaml:"use_host_prefix"`
	DefaultTTL     time.Duration `mapstructure:"default_ttl" yaml:"default_ttl"`
	Version        string        `mapstructure:"version" yaml:"version"`
	VersionKey     string        `mapstructure:"version_key" yaml:"version_key"`
	Codec          string        `mapstructure:"codec" yaml:"codec"`
	MaxEntryBytes  int           `mapstructure:"max_entry_bytes" yaml:"max_entry_bytes"`
	CoalesceMisses bool          `mapstructure:"coalesce_misses" yaml:"coalesce_misses"`
	Store          store.Config  `mapstructure:"store" yaml:"store"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("content", "./content")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.pages", []string{})
	v.SetDefault("cache.use_host_prefix", false)
	v.SetDefault("cache.default_ttl", 0)
	v.SetDefault("cache.version", "")
	v.SetDefault("cache.version_key", "")
	v.SetDefault("cache.codec", "json")
	v.SetDefault("cache.max_entry_bytes", 0)
	v.SetDefault("cache.coalesce_misses", false)

	// registered so AutomaticEnv can see them
	v.SetDefault("cache.store.kind", store.KindMemory)
	v.SetDefault("cache.store.ttl", 0)
	v.SetDefault("cache.store.redis.url", "")
	v.SetDefault("cache.store.redis.addr", "")
	v.SetDefault("cache.store.redis.password", "")
	v.SetDefault("cache.store.redis.prefix", "")
}

// Load reads path (if non-empty) and the environment. A missing path is an
// error; no path means environment and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeHook extends viper's defaults: durations given as bare numbers
// ("ttl: 60", PAGECACHE_CACHE_STORE_TTL=60) are seconds, not nanoseconds.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(secondsToDurationHook),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var durationType = reflect.TypeOf(time.Duration(0))

func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	case reflect.String:
		if n, err := strconv.ParseFloat(strings.TrimSpace(data.(string)), 64); err == nil {
			return time.Duration(n * float64(time.Second)), nil
		}
	}
	return data, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.Cache.DefaultTTL < 0 || c.Cache.Store.TTL < 0 {
		return errors.New("config: ttl must not be negative")
	}
	return nil
}

// Options converts the cache section into pagecache.Options. Logger, Hooks
// and Provider are left for the caller.
func (c Cache) Options() (pagecache.Options, error) {
	pages, err := pagecache.ParsePages(c.Pages)
	if err != nil {
		return pagecache.Options{}, err
	}
	codec, err := pagecache.CodecByName(c.Codec)
	if err != nil {
		return pagecache.Options{}, err
	}
	return pagecache.Options{
		Disabled:       !c.Enabled,
		Pages:          pages,
		UseHostPrefix:  c.UseHostPrefix,
		Store:          c.Store,
		DefaultTTL:     c.DefaultTTL,
		Version:        c.Version,
		VersionKey:     c.VersionKey,
		Codec:          codec,
		MaxEntryBytes:  c.MaxEntryBytes,
		CoalesceMisses: c.CoalesceMisses,
	}, nil
}
