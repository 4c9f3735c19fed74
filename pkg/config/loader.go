package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type entry struct {
	once  sync.Once
	value any
	err   error
}

type cache struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
}

var (
	loaded = &cache{entries: make(map[reflect.Type]*entry)}

	defaultEnvLoaded sync.Once
)

func (c *cache) entry(t reflect.Type) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[t]
	if !ok {
		e = &entry{}
		c.entries[t] = e
	}
	return e
}

func loadDefaultEnv() {
	defaultEnvLoaded.Do(func() {
		// The default .env file is optional.
		_ = godotenv.Load()
	})
}

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v. Each config type is parsed once
// per process; later calls receive a copy of the cached value. A failed parse
// is cached too, so a misconfigured process keeps failing consistently.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDefaultEnv()

	e := loaded.entry(reflect.TypeFor[T]())
	e.once.Do(func() {
		var cfg T
		if err := env.Parse(&cfg); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = cfg
	})
	if e.err != nil {
		return e.err
	}

	cfg, ok := e.value.(T)
	if !ok {
		return ErrConfigNotLoaded
	}
	*v = cfg
	return nil
}

// Parse reads environment variables into v without touching the cache.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDefaultEnv()

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	loaded.mu.Lock()
	loaded.entries = make(map[reflect.Type]*entry)
	loaded.mu.Unlock()
}
