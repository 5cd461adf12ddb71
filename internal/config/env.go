package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// ToolchainEnv lists the variables a .env file typically sets for a build.
var ToolchainEnv = []string{
	"CC", "CXX", "CFLAGS", "LDFLAGS", "LDSHARED", "PKG_CONFIG", "PKG_CONFIG_PATH",
}

// LoadEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. With an empty path
// it reads ./.env and ignores its absence; an explicit path must exist.
func LoadEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(path)
}
