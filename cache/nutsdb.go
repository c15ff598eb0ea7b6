package cache

import (
	"time"

	"hybrid/config"

	"github.com/pkg/errors"
	"github.com/xujiajun/nutsdb"
)

var seenValue = []byte{1}

type NutsDBStorage struct {
	cfg  config.NutsDBCfg
	conn *nutsdb.DB
}

func NewNutsDBStorage(cfg config.NutsDBCfg) (*NutsDBStorage, error) {
	options := nutsdb.DefaultOptions
	options.Dir = cfg.Path
	options.SyncEnable = true
	if cfg.SegmentSize > 0 {
		options.SegmentSize = cfg.SegmentSize
	}

	conn, err := nutsdb.Open(options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to initialize the nutsdb store")
	}

	return &NutsDBStorage{
		conn: conn,
		cfg:  cfg,
	}, nil
}

func (b *NutsDBStorage) CheckConn() error {
	return b.conn.View(func(*nutsdb.Tx) error { return nil })
}

func (b *NutsDBStorage) CloseConnection() error {
	return b.conn.Close()
}

func (b *NutsDBStorage) SetIfAbsent(bucket, key string, ttl time.Duration) (bool, error) {
	if b.cfg.Bucket != "" {
		bucket = b.cfg.Bucket
	}

	var stored bool
	err := b.conn.Update(func(tx *nutsdb.Tx) error {
		// Get fails for missing, expired and deleted keys alike.
		if _, err := tx.Get(bucket, []byte(key)); err == nil {
			return nil
		}

		if err := tx.Put(bucket, []byte(key), seenValue, uint32(ttlSeconds(ttl))); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to update nutsdb")
	}
	return stored, nil
}
