package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() AppConfig {
	return AppConfig{
		Server: Server{
			ApiPort:     8080,
			MetricsPort: 9080,
			MaxBodySize: "5MB",
		},
		Directory: Directory{
			URL:     "https://directory.example.com/api/names",
			Timeout: 5 * time.Second,
		},
		Resolver: Resolver{
			MaxParallelLookups:  8,
			MaxParallelPersists: 16,
			PersistTimeout:      5 * time.Second,
		},
		Store: Store{
			Provider:  ProviderTypeRedis,
			KeyPrefix: "ticket:",
			Redis: Redis{
				Host:     "localhost",
				Port:     6379,
				PoolSize: 10,
				Timeout:  time.Second,
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ServerPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ApiPort = 0
	assert.ErrorContains(t, cfg.Validate(), "apiPort")

	cfg = validConfig()
	cfg.Server.MetricsPort = cfg.Server.ApiPort
	assert.ErrorContains(t, cfg.Validate(), "must differ")
}

func TestValidate_MaxBodySize(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MaxBodySize = "five megabytes"
	assert.ErrorContains(t, cfg.Validate(), "maxBodySize")

	cfg.Server.MaxBodySize = "2MiB"
	assert.NoError(t, cfg.Validate())
	n, err := cfg.Server.MaxBodyBytes()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2<<20), n)
}

func TestValidate_DirectoryURL(t *testing.T) {
	cfg := validConfig()
	cfg.Directory.URL = ""
	assert.ErrorContains(t, cfg.Validate(), "url is required")

	cfg = validConfig()
	cfg.Directory.URL = "ftp://directory.example.com"
	assert.ErrorContains(t, cfg.Validate(), "unsupported scheme")

	cfg = validConfig()
	cfg.Directory.URL = "https://"
	assert.ErrorContains(t, cfg.Validate(), "missing host")

	cfg = validConfig()
	cfg.Directory.Timeout = 0
	assert.ErrorContains(t, cfg.Validate(), "timeout must be > 0")
}

func TestValidate_Resolver(t *testing.T) {
	cfg := validConfig()
	cfg.Resolver.MaxParallelLookups = 0
	assert.ErrorContains(t, cfg.Validate(), "maxParallelLookups")

	cfg = validConfig()
	cfg.Resolver.MaxParallelPersists = -1
	assert.ErrorContains(t, cfg.Validate(), "maxParallelPersists")

	cfg = validConfig()
	cfg.Resolver.PersistTimeout = 0
	assert.ErrorContains(t, cfg.Validate(), "persistTimeout")
}

func TestValidate_StoreProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Provider = "memcached"
	assert.ErrorContains(t, cfg.Validate(), "unknown provider")

	cfg = validConfig()
	cfg.Store.KeyPrefix = ""
	assert.ErrorContains(t, cfg.Validate(), "keyPrefix")
}

func TestValidate_Redis(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Redis.Host = ""
	assert.ErrorContains(t, cfg.Validate(), "host is required")

	cfg = validConfig()
	cfg.Store.Redis.Port = 70000
	assert.ErrorContains(t, cfg.Validate(), "port")

	cfg = validConfig()
	cfg.Store.Redis.PoolSize = 0
	assert.ErrorContains(t, cfg.Validate(), "poolSize")
}

func TestValidate_RocksDB(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Provider = ProviderTypeRocksDB
	cfg.Store.RocksDB = RocksDB{
		Path:            t.TempDir(),
		CreateIfMissing: true,
		MaxOpenFiles:    100,
		BlockSize:       "16KB",
		BlockCache:      "64MB",
		WriteBufferSize: "32MB",
	}
	assert.NoError(t, cfg.Validate())

	cfg.Store.RocksDB.BlockCache = "lots"
	assert.ErrorContains(t, cfg.Validate(), "blockCache")

	cfg.Store.RocksDB.BlockCache = "64MB"
	cfg.Store.RocksDB.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "path is required")
}

func TestValidate_RocksDBPathMustExist(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Provider = ProviderTypeRocksDB
	cfg.Store.RocksDB = RocksDB{
		Path:            "/does/not/exist",
		CreateIfMissing: false,
		MaxOpenFiles:    100,
	}
	assert.ErrorContains(t, cfg.Validate(), "does not exist")
}
