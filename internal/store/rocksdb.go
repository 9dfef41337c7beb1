package store

import (
	"context"
	"fmt"
	"time"

	"github.com/linxGnu/grocksdb"

	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/metrics"
)

// RocksDBProvider is the embedded alternative to redis. Ticket records do
// not expire, so a single default column family with no TTL bookkeeping is
// enough. RocksDB itself is thread safe as long as each provider owns its
// ReadOptions/WriteOptions, which it does.
type RocksDBProvider struct {
	db        *grocksdb.DB
	readOpts  *grocksdb.ReadOptions
	writeOpts *grocksdb.WriteOptions
}

func NewRocksDBProvider(cfg config.RocksDB) (*RocksDBProvider, error) {
	dbOpts := grocksdb.NewDefaultOptions()
	dbOpts.SetCreateIfMissing(cfg.CreateIfMissing)
	if cfg.MaxOpenFiles > 0 {
		dbOpts.SetMaxOpenFiles(cfg.MaxOpenFiles)
	}

	if cfg.WriteBufferSize != "" {
		writeBufBytes, _ := cfg.WriteBufferSizeBytes()
		if writeBufBytes > 0 {
			dbOpts.SetWriteBufferSize(writeBufBytes)
		}
	}

	// Block-cache tuning (optional)
	if cfg.BlockCache != "" {
		blockCacheBytes, _ := cfg.BlockCacheBytes()
		if blockCacheBytes > 0 {
			bbto := grocksdb.NewDefaultBlockBasedTableOptions()
			bbto.SetBlockCache(grocksdb.NewLRUCache(blockCacheBytes))
			if cfg.BlockSize != "" {
				if blockSizeBytes, _ := cfg.BlockSizeBytes(); blockSizeBytes > 0 {
					bbto.SetBlockSize(int(blockSizeBytes))
				}
			}
			dbOpts.SetBlockBasedTableFactory(bbto)
		}
	}

	db, err := grocksdb.OpenDb(dbOpts, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open rocksdb: %w", err)
	}

	return &RocksDBProvider{
		db:        db,
		readOpts:  grocksdb.NewDefaultReadOptions(),
		writeOpts: grocksdb.NewDefaultWriteOptions(),
	}, nil
}

func (p *RocksDBProvider) BatchGet(ctx context.Context, keys []string) (result map[string]string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("rocksdb", "get", time.Since(start).Seconds())
		metrics.RecordProviderOp("rocksdb", "get", err)
	}()

	result = make(map[string]string, len(keys))
	for _, chunk := range splitToChunks(keys) {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		byteKeys := make([][]byte, len(chunk))
		for i, k := range chunk {
			byteKeys[i] = []byte(k)
		}

		slices, err := p.db.MultiGet(p.readOpts, byteKeys...)
		if err != nil {
			return nil, fmt.Errorf("rocksdb multiget failed: %w", err)
		}
		for i, slice := range slices {
			if slice.Exists() {
				result[chunk[i]] = string(slice.Data())
			}
			slice.Free()
		}
	}
	return result, nil
}

func (p *RocksDBProvider) BatchPut(ctx context.Context, items map[string]string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("rocksdb", "put", time.Since(start).Seconds())
		metrics.RecordProviderOp("rocksdb", "put", err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	wb := grocksdb.NewWriteBatch()
	defer wb.Destroy()
	for k, v := range items {
		wb.Put([]byte(k), []byte(v))
	}
	if err = p.db.Write(p.writeOpts, wb); err != nil {
		return fmt.Errorf("rocksdb write batch failed: %w", err)
	}
	return nil
}

func (p *RocksDBProvider) BatchDelete(ctx context.Context, keys []string) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordProviderLatency("rocksdb", "delete", time.Since(start).Seconds())
		metrics.RecordProviderOp("rocksdb", "delete", err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	wb := grocksdb.NewWriteBatch()
	defer wb.Destroy()
	for _, k := range keys {
		wb.Delete([]byte(k))
	}
	if err = p.db.Write(p.writeOpts, wb); err != nil {
		return fmt.Errorf("rocksdb delete batch failed: %w", err)
	}
	return nil
}

func (p *RocksDBProvider) Close() error {
	p.readOpts.Destroy()
	p.writeOpts.Destroy()
	p.db.Close()
	return nil
}
