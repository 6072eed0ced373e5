package welllog

import (
	"time"

	"github.com/sgostarter/i/stg"
	"github.com/sgostarter/libeasygo/stg/fs/rawfs"
	"gopkg.in/yaml.v3"
)

type PorosityConfig struct {
	MatrixDensity float64 `yaml:"matrixDensity" json:"matrixDensity"`
	FluidDensity  float64 `yaml:"fluidDensity" json:"fluidDensity"`
}

type PermeabilityConfig struct {
	GrainSize float64 `yaml:"grainSize" json:"grainSize"`
	C         float64 `yaml:"c" json:"c"`
	X         float64 `yaml:"x" json:"x"`
	Y         float64 `yaml:"y" json:"y"`
}

type CutoffConfig struct {
	VshMax        float64 `yaml:"vshMax" json:"vshMax"`
	PorosityMin   float64 `yaml:"porosityMin" json:"porosityMin"`
	SaturationMax float64 `yaml:"saturationMax" json:"saturationMax"`
}

type OptimizerConfig struct {
	MaxCacheSize       int           `yaml:"maxCacheSize" json:"maxCacheSize"`
	CacheTTL           time.Duration `yaml:"cacheTTL" json:"cacheTTL"`
	CompressCache      bool          `yaml:"compressCache" json:"compressCache"`
	MaxConcurrentLoads int           `yaml:"maxConcurrentLoads" json:"maxConcurrentLoads"`
	ReloadLoadedChunks bool          `yaml:"reloadLoadedChunks" json:"reloadLoadedChunks"`

	CompressThresholdBytes int           `yaml:"compressThresholdBytes" json:"compressThresholdBytes"`
	VirtualizeThreshold    int           `yaml:"virtualizeThreshold" json:"virtualizeThreshold"`
	ChunkSize              int           `yaml:"chunkSize" json:"chunkSize"`
	MaxMemoryUsage         int64         `yaml:"maxMemoryUsage" json:"maxMemoryUsage"`
	GCThreshold            float64       `yaml:"gcThreshold" json:"gcThreshold"`
	SampleInterval         time.Duration `yaml:"sampleInterval" json:"sampleInterval"`
}

type EngineConfig struct {
	Porosity     PorosityConfig     `yaml:"porosity" json:"porosity"`
	Permeability PermeabilityConfig `yaml:"permeability" json:"permeability"`
	Cutoffs      CutoffConfig       `yaml:"cutoffs" json:"cutoffs"`
	Optimizer    OptimizerConfig    `yaml:"optimizer" json:"optimizer"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Porosity: PorosityConfig{
			MatrixDensity: 2.65,
			FluidDensity:  1.0,
		},
		Permeability: PermeabilityConfig{
			GrainSize: 100,
			C:         10000,
			X:         4.0,
			Y:         2.0,
		},
		Cutoffs: CutoffConfig{
			VshMax:        0.5,
			PorosityMin:   0.08,
			SaturationMax: 0.6,
		},
		Optimizer: OptimizerConfig{
			MaxCacheSize:           100,
			CacheTTL:               time.Minute * 5,
			MaxConcurrentLoads:     3,
			ReloadLoadedChunks:     true,
			CompressThresholdBytes: 10 * 1024,
			VirtualizeThreshold:    10000,
			ChunkSize:              1000,
			MaxMemoryUsage:         100 * 1024 * 1024,
			GCThreshold:            0.8,
			SampleInterval:         time.Second * 30,
		},
	}
}

func LoadEngineConfig(fileName string, storage stg.FileStorage) (cfg EngineConfig, err error) {
	if storage == nil {
		storage = rawfs.NewFSStorage("")
	}

	d, err := storage.ReadFile(fileName)
	if err != nil {
		return
	}

	cfg = DefaultEngineConfig()
	err = yaml.Unmarshal(d, &cfg)

	return
}

func SaveEngineConfig(cfg EngineConfig, fileName string, storage stg.FileStorage) error {
	if storage == nil {
		storage = rawfs.NewFSStorage("")
	}

	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return storage.WriteFile(fileName, d)
}
