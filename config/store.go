package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultSessionKey = "user"

// StoreKind selects the session store backend.
type StoreKind string

const (
	// StoreKindFile keeps the session in a file under SESSION_FILE_DIR.
	StoreKindFile StoreKind = "file"
	// StoreKindRedis keeps the session in Redis.
	StoreKindRedis StoreKind = "redis"
	// StoreKindMemory keeps the session in process memory (tests and demos).
	StoreKindMemory StoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreKind.
func (k *StoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "redis", "memory":
		*k = StoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreKind: %q (valid options: file, redis, memory)", v)
	}
}

// SessionStoreConfig controls where the session record is persisted.
type SessionStoreConfig struct {
	Kind    StoreKind `env:"SESSION_STORE"    envDefault:"file"`
	FileDir string    `env:"SESSION_FILE_DIR"`
	// Key names the single session slot.
	Key string `env:"SESSION_KEY" envDefault:"user"`
}

// Sanitize fills the default directory and key.
func (c *SessionStoreConfig) Sanitize() {
	if c.Kind == "" {
		c.Kind = StoreKindFile
	}
	c.Key = strings.TrimSpace(c.Key)
	if c.Key == "" {
		c.Key = defaultSessionKey
	}
	c.FileDir = strings.TrimSpace(c.FileDir)
	if c.FileDir == "" {
		c.FileDir = defaultSessionDir()
	}
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "binwatch")
	}
	return ".binwatch"
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	KeyPrefix          string   `env:"KEY_PREFIX"           envDefault:"binwatch:"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// Sanitize trims node lists and drops empty entries.
func (c *RedisConfig) Sanitize() {
	c.URI = strings.TrimSpace(c.URI)
	c.SentinelNodes = compactList(c.SentinelNodes)
	c.ClusterNodes = compactList(c.ClusterNodes)
	if c.DB < 0 {
		c.DB = 0
	}
}

func compactList(in []string) []string {
	out := in[:0]
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
