// Package config loads layered configuration: built-in defaults, an
// optional YAML file, then environment overrides with the LEARNMATCH_
// prefix (LEARNMATCH_SERVER_ADDRESS -> server.address).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/skillbridge/learnmatch/internal/matching"
)

const envPrefix = "LEARNMATCH_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "LEARNMATCH_CONFIG"

var defaultConfigPaths = []string{
	"configs/config.yaml",
	"config.yaml",
}

type Config struct {
	Server  ServerConfig     `koanf:"server"`
	Storage StorageConfig    `koanf:"storage"`
	Seed    SeedConfig       `koanf:"seed"`
	Ranking RankingConfig    `koanf:"ranking"`
	Weights matching.Weights `koanf:"weights"`
}

type ServerConfig struct {
	Address string `koanf:"address"`
}

type StorageConfig struct {
	SQLitePath string `koanf:"sqlite_path"`
}

type SeedConfig struct {
	CoursesPath     string `koanf:"courses_path"`
	InternshipsPath string `koanf:"internships_path"`
	LearnersPath    string `koanf:"learners_path"`
}

type RankingConfig struct {
	FetchCap              int `koanf:"fetch_cap"`
	DefaultLimit          int `koanf:"default_limit"`
	CourseRecommendations int `koanf:"course_recommendations"`
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Address: ":8080"},
		Storage: StorageConfig{SQLitePath: "data/learnmatch.db"},
		Seed: SeedConfig{
			CoursesPath:     "data/courses.json",
			InternshipsPath: "data/internships.json",
			LearnersPath:    "data/learners.json",
		},
		Ranking: RankingConfig{
			FetchCap:              200,
			DefaultLimit:          5,
			CourseRecommendations: 10,
		},
		Weights: matching.DefaultWeights(),
	}
}

// Load builds the config from defaults, file, and environment, then
// validates it. A malformed weight set fails here, before anything runs.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
