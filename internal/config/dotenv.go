package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file in the working directory.
// A missing file is not an error; variables already set are kept.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: .env: %w", ErrLoadConfig, err)
		}
	}
	return nil
}
