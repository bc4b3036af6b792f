// Package config loads runtime settings from the environment and builds
// the storage backend they select.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/DotmanL/sporty-go/internal/store"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
)

// Secret is a string that masks itself when logged or serialized.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// Store backends selectable via SPORTY_STORE.
const (
	StoreMemory    = "memory"
	StoreFile      = "file"
	StoreRedis     = "redis"
	StoreFirestore = "firestore"
)

type Config struct {
	APIURL             string `json:"apiUrl"`
	FirebaseAPIKey     Secret `json:"firebaseApiKey"`
	GoogleClientID     string `json:"googleClientId"`
	GoogleClientSecret Secret `json:"googleClientSecret"`
	GoogleRedirectURL  string `json:"googleRedirectUrl"`

	StoreBackend string `json:"storeBackend"`
	StorePath    string `json:"storePath"`
	StoreKey     Secret `json:"storeKey"`
	RedisAddr    string `json:"redisAddr"`
	RedisDB      int    `json:"redisDb"`
	GCPProject   string `json:"gcpProject"`
	GCPCreds     string `json:"gcpCreds"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// LoadFromEnv reads SPORTY_* variables, applying defaults where the
// environment is silent.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		APIURL:             os.Getenv("SPORTY_API_URL"),
		FirebaseAPIKey:     Secret(os.Getenv("SPORTY_FIREBASE_API_KEY")),
		GoogleClientID:     os.Getenv("SPORTY_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: Secret(os.Getenv("SPORTY_GOOGLE_CLIENT_SECRET")),
		GoogleRedirectURL:  os.Getenv("SPORTY_GOOGLE_REDIRECT_URL"),
		StoreBackend:       os.Getenv("SPORTY_STORE"),
		StorePath:          os.Getenv("SPORTY_STORE_PATH"),
		StoreKey:           Secret(os.Getenv("SPORTY_STORE_KEY")),
		RedisAddr:          os.Getenv("SPORTY_REDIS_ADDR"),
		GCPProject:         os.Getenv("SPORTY_GCP_PROJECT"),
		GCPCreds:           os.Getenv("SPORTY_GCP_CREDENTIALS_FILE"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogFormat:          os.Getenv("LOG_FORMAT"),
	}

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("SPORTY_API_URL not set")
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreFile
	}
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = "http://localhost:9283/oauth/callback"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.StorePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolving home dir for store path: %w", err)
			}
			c.StorePath = home + "/.sporty/session.enc"
		}
		if c.StoreKey == "" {
			return fmt.Errorf("SPORTY_STORE_KEY required for the file store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			c.RedisAddr = "localhost:6379"
		}
	case StoreFirestore:
		if c.GCPProject == "" {
			return fmt.Errorf("SPORTY_GCP_PROJECT required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file, redis, or firestore)", c.StoreBackend)
	}
	return nil
}

// BuildStore constructs the storage backend the config selects. The returned
// closer is a no-op for backends without a connection to release.
func (c *Config) BuildStore(ctx context.Context) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.StoreBackend {
	case StoreMemory:
		return store.NewMemoryStore(), noop, nil

	case StoreFile:
		fileStore, err := store.NewFileStore(c.StorePath, []byte(c.StoreKey))
		if err != nil {
			return nil, nil, fmt.Errorf("opening file store: %w", err)
		}
		return fileStore, noop, nil

	case StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr: c.RedisAddr,
			DB:   c.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		redisStore, err := store.NewRedisStore(client, "default")
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return redisStore, client.Close, nil

	case StoreFirestore:
		var opts []option.ClientOption
		if c.GCPCreds != "" {
			opts = append(opts, option.WithCredentialsFile(c.GCPCreds))
		}
		client, err := firestore.NewClient(ctx, c.GCPProject, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		firestoreStore, err := store.NewFirestoreStore(client, "sessions", "default")
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return firestoreStore, client.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
}
