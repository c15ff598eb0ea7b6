package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeNutsDB = "nutsdb"

	DefaultMemorySize = 4096
)

// ReplayCfg enables the freshness window for inbound tokens and selects the
// storage that remembers already seen signatures.
type ReplayCfg struct {
	Enable bool `json:"enable" yaml:"enable"`
	// MaxAge of an accepted nonce in seconds.
	MaxAge int64     `json:"max_age" yaml:"max_age"`
	Type   string    `json:"type" yaml:"type"`
	Memory MemoryCfg `json:"memory" yaml:"memory"`
	Redis  RedisConf `json:"redis" yaml:"redis"`
	NutsDB NutsDBCfg `json:"nutsdb" yaml:"nutsdb"`
}

func (cfg ReplayCfg) Validate() error {
	if !cfg.Enable {
		return nil
	}

	validators := []*validation.FieldRules{
		validation.Field(&cfg.MaxAge, validation.Required, validation.Min(int64(1))),
		validation.Field(&cfg.Type, validation.Required,
			validation.In(StorageTypeMemory, StorageTypeRedis, StorageTypeNutsDB)),
	}

	switch cfg.Type {
	case StorageTypeNutsDB:
		validators = append(validators, validation.Field(&cfg.NutsDB))
	case StorageTypeRedis:
		validators = append(validators, validation.Field(&cfg.Redis))
	}
	return validation.ValidateStruct(&cfg, validators...)
}

func (cfg *ReplayCfg) Init() {
	if cfg.Type == "" {
		cfg.Type = StorageTypeMemory
	}
	if cfg.Memory.Size <= 0 {
		cfg.Memory.Size = DefaultMemorySize
	}
}

func (cfg ReplayCfg) MaxAgeDuration() time.Duration {
	return time.Duration(cfg.MaxAge) * time.Second
}

type MemoryCfg struct {
	// Size caps the number of remembered signatures. It must exceed the number
	// of trusted tokens expected within max_age: once full, new tokens are
	// rejected until remembered ones expire.
	Size int `json:"size" yaml:"size"`
}
