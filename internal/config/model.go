package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type AppConfig struct {
	Server    Server    `yaml:"server"`
	Directory Directory `yaml:"directory"`
	Resolver  Resolver  `yaml:"resolver"`
	Store     Store     `yaml:"store"`
}

func (c *AppConfig) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Directory.validate(); err != nil {
		return err
	}
	if err := c.Resolver.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Server
///////////////////////////////////////////////////////////

type Server struct {
	ApiPort     int    `yaml:"apiPort"`
	MetricsPort int    `yaml:"metricsPort"`
	MaxBodySize string `yaml:"maxBodySize"`
}

func (s *Server) validate() error {
	if s.ApiPort <= 0 || s.ApiPort > 65535 {
		return fmt.Errorf("server: apiPort must be 1..65535")
	}
	if s.MetricsPort <= 0 || s.MetricsPort > 65535 {
		return fmt.Errorf("server: metricsPort must be 1..65535")
	}
	if s.MetricsPort == s.ApiPort {
		return fmt.Errorf("server: apiPort and metricsPort must differ")
	}
	if _, err := s.MaxBodyBytes(); err != nil {
		return fmt.Errorf("server: invalid maxBodySize '%s': %v", s.MaxBodySize, err)
	}
	return nil
}

// MaxBodyBytes converts the configured human-readable size ("5MB") to bytes.
func (s *Server) MaxBodyBytes() (uint64, error) {
	return ParseByteSize(s.MaxBodySize)
}

///////////////////////////////////////////////////////////
/// Directory (external name-lookup service)
///////////////////////////////////////////////////////////

type Directory struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

func (d *Directory) validate() error {
	if d.URL == "" {
		return fmt.Errorf("directory: url is required")
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return fmt.Errorf("directory: invalid url '%s': %v", d.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("directory: unsupported scheme '%s' in url", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("directory: missing host in url '%s'", d.URL)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("directory: timeout must be > 0")
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Resolver
///////////////////////////////////////////////////////////

type Resolver struct {
	MaxParallelLookups  int           `yaml:"maxParallelLookups"`
	MaxParallelPersists int           `yaml:"maxParallelPersists"`
	PersistTimeout      time.Duration `yaml:"persistTimeout"`
}

func (r *Resolver) validate() error {
	if r.MaxParallelLookups <= 0 {
		return fmt.Errorf("resolver: maxParallelLookups must be > 0")
	}
	if r.MaxParallelPersists <= 0 {
		return fmt.Errorf("resolver: maxParallelPersists must be > 0")
	}
	if r.PersistTimeout <= 0 {
		return fmt.Errorf("resolver: persistTimeout must be > 0")
	}
	return nil
}

///////////////////////////////////////////////////////////
/// Store providers
///////////////////////////////////////////////////////////

type ProviderType string

const (
	ProviderTypeRedis   ProviderType = "redis"
	ProviderTypeRocksDB ProviderType = "rocksdb"
)

type Store struct {
	Provider  ProviderType `yaml:"provider"`
	KeyPrefix string       `yaml:"keyPrefix"`
	Redis     Redis        `yaml:"redis"`
	RocksDB   RocksDB      `yaml:"rocksdb"`
}

func (s *Store) validate() error {
	if s.KeyPrefix == "" {
		return fmt.Errorf("store: keyPrefix is required")
	}
	switch s.Provider {
	case ProviderTypeRedis:
		return s.Redis.validate()
	case ProviderTypeRocksDB:
		return s.RocksDB.validate()
	default:
		return fmt.Errorf("store: unknown provider '%s'", s.Provider)
	}
}

type Redis struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	DB       int           `yaml:"db"`
	Password string        `yaml:"password"`
	PoolSize int           `yaml:"poolSize"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (r *Redis) validate() error {
	if r.Host == "" {
		return fmt.Errorf("store.redis: host is required")
	}
	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("store.redis: port must be 1..65535")
	}
	if r.PoolSize <= 0 {
		return fmt.Errorf("store.redis: poolSize must be > 0")
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("store.redis: timeout must be > 0")
	}
	return nil
}

type RocksDB struct {
	Path            string `yaml:"path"`
	CreateIfMissing bool   `yaml:"createIfMissing"`
	MaxOpenFiles    int    `yaml:"maxOpenFiles"`
	BlockSize       string `yaml:"blockSize"`
	BlockCache      string `yaml:"blockCache"`
	WriteBufferSize string `yaml:"writeBufferSize"`
}

func (r *RocksDB) validate() error {
	if r.Path == "" {
		return fmt.Errorf("store.rocksdb: path is required")
	}
	if r.MaxOpenFiles <= 0 {
		return fmt.Errorf("store.rocksdb: maxOpenFiles must be > 0")
	}

	if !r.CreateIfMissing {
		info, err := os.Stat(r.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("store.rocksdb: path '%s' does not exist and createIfMissing=false", r.Path)
			}
			return fmt.Errorf("store.rocksdb: unable to access path '%s': %v", r.Path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store.rocksdb: path '%s' exists but is not a directory", r.Path)
		}
	}

	if r.BlockSize != "" {
		if _, err := r.BlockSizeBytes(); err != nil {
			return fmt.Errorf("store.rocksdb: %v", err)
		}
	}
	if r.BlockCache != "" {
		if _, err := r.BlockCacheBytes(); err != nil {
			return fmt.Errorf("store.rocksdb: %v", err)
		}
	}
	if r.WriteBufferSize != "" {
		if _, err := r.WriteBufferSizeBytes(); err != nil {
			return fmt.Errorf("store.rocksdb: %v", err)
		}
	}
	return nil
}

func (r *RocksDB) BlockSizeBytes() (uint64, error) {
	return ParseBytesStr(r.BlockSize, "store.rocksdb.blockSize")
}

func (r *RocksDB) BlockCacheBytes() (uint64, error) {
	return ParseBytesStr(r.BlockCache, "store.rocksdb.blockCache")
}

func (r *RocksDB) WriteBufferSizeBytes() (uint64, error) {
	return ParseBytesStr(r.WriteBufferSize, "store.rocksdb.writeBufferSize")
}

///////////////////////////////////////////////////////////
/// UTILS
///////////////////////////////////////////////////////////

func ParseByteSize(s string) (uint64, error) {
	return humanize.ParseBytes(strings.TrimSpace(s))
}

func ParseBytesStr(bytesString string, errorPath string) (uint64, error) {
	bytes, err := ParseByteSize(bytesString)
	if err != nil {
		return 0, fmt.Errorf("invalid config -> %v: %v has wrong value (%v)", errorPath, bytesString, err)
	}
	return bytes, nil
}
