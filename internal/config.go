package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type EmbeddingsConfig struct {
	Backend       string `yaml:"backend"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	Dimension     int    `yaml:"dimension"`
}

type ThresholdsConfig struct {
	AutoLink  float64 `yaml:"auto_link"`
	Expand    float64 `yaml:"expand"`
	Duplicate float64 `yaml:"duplicate"`
}

type ReflectionConfig struct {
	PruneDays         int     `yaml:"prune_days"`
	PruneImportance   float64 `yaml:"prune_importance"`
	PromoteAccess     int     `yaml:"promote_access"`
	PromoteImportance float64 `yaml:"promote_importance"`
}

type Config struct {
	Embeddings  EmbeddingsConfig `yaml:"embeddings"`
	Thresholds  ThresholdsConfig `yaml:"thresholds"`
	Reflection  ReflectionConfig `yaml:"reflection"`
	RecallLimit int              `yaml:"recall_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Backend:   "onnx",
			Dimension: 384,
		},
		Thresholds: ThresholdsConfig{
			AutoLink:  0.8,
			Expand:    0.85,
			Duplicate: 0.95,
		},
		Reflection: ReflectionConfig{
			PruneDays:         30,
			PruneImportance:   0.3,
			PromoteAccess:     5,
			PromoteImportance: 0.5,
		},
		RecallLimit: 7,
	}
}

func LoadConfig(ws Workspace) (*Config, error) {
	data, err := os.ReadFile(ws.ConfigPath())
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func SaveConfig(ws Workspace, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(ws.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
