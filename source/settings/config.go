package settings

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Viewport struct {
	Xmin float64 `toml:"xmin"`
	Xmax float64 `toml:"xmax"`
	Ymin float64 `toml:"ymin"`
	Ymax float64 `toml:"ymax"`
}

type Seed struct {
	// One of "none", "source" (derived from the program text) or "random".
	Mode string `toml:"mode"`
}

type Database struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}

type Config struct {
	Root     string    `toml:"root"`
	OutDir   string    `toml:"out_dir"`
	Isolate  bool      `toml:"isolate"`
	Viewport *Viewport `toml:"viewport"`
	Seed     Seed      `toml:"seed"`
	Database Database  `toml:"database"`
	Log      Log       `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Seed: Seed{Mode: "none"},
		Log:  Log{Level: "warning"},
	}
}

// Reads the configuration from the given TOML file on top of the defaults. A missing file is
// not an error if it's the default one, since most projects won't bother with one.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = CONFIG_FILE
		if _, e := os.Stat(path); e != nil {
			return cfg, nil
		}
	}
	if _, e := toml.DecodeFile(path, cfg); e != nil {
		return nil, errors.Wrapf(e, "reading configuration from %s", path)
	}
	switch cfg.Seed.Mode {
	case "", "none", "source", "random":
	default:
		return nil, errors.Errorf("unknown seed mode %q in %s", cfg.Seed.Mode, path)
	}
	return cfg, nil
}
