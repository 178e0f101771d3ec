package config

import (
	"github.com/hsdfat8/telbill/internal/logger"
	"github.com/joho/godotenv"
)

// LoadEnv loads variables from .env files into the process environment.
// A missing file is logged and ignored.
func LoadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		logger.Log.Debugw("No .env file loaded", "error", err.Error())
	}
}
