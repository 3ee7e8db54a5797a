// Package config loads the combined-CLI (cmd/fts) configuration with
// cleanenv, the way the teacher's config package resolves a config path
// (flag > CONFIG_PATH env > default) and layers flag overrides on top of
// the loaded file. The plain index/search CLIs stay flag-only so they
// keep the exact usage contract external interfaces require.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the cmd/fts combined entry point's configuration.
type Config struct {
	Env         string         `yaml:"env" env-default:"local"`
	IndexDir    string         `yaml:"index_dir" env-required:"true"`
	DocStore    DocStoreConfig `yaml:"docstore"`
	Workers     int            `yaml:"workers" env-default:"4"`
	Interactive bool           `yaml:"interactive" env-default:"false"`
}

// DocStoreConfig configures the optional leveldb document side-car.
type DocStoreConfig struct {
	Path    string `yaml:"path" env-default:"./data/docs.ldb"`
	Enabled bool   `yaml:"enabled" env-default:"false"`
}

// MustLoad resolves a config path (flag > CONFIG_PATH env > default),
// reads it with cleanenv, applies flag overrides, and panics on any
// failure — cmd/fts has no recovery path for a broken config.
func MustLoad() *Config {
	configPathFlag := flag.String("config", "", "path to the config file")
	indexDirFlag := flag.String("index-dir", "", "path to the index directory")
	workersFlag := flag.Int("workers", 0, "number of indexing workers")
	interactiveFlag := flag.Bool("i", false, "launch the interactive search console")
	flag.Parse()

	configPath := *configPathFlag
	if configPath == "" {
		configPath = fetchConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("error loading config file: " + err.Error())
	}

	if *indexDirFlag != "" {
		cfg.IndexDir = *indexDirFlag
	}
	if *workersFlag != 0 {
		cfg.Workers = *workersFlag
	}
	if *interactiveFlag {
		cfg.Interactive = true
	}

	return &cfg
}

// fetchConfigPath resolves the config path from CONFIG_PATH or a
// default relative path, in that priority order.
func fetchConfigPath() string {
	res := os.Getenv("CONFIG_PATH")
	if res == "" {
		res = "./config/config_local.yaml"
	}
	fmt.Println("config path:", res)
	return res
}
