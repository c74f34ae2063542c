package utils

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// GetEnvString returns the environment value for key, or defaultValue when
// the variable is unset.
func GetEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the environment value for key parsed as an int. Unset or
// unparseable values fall back to defaultValue.
func GetEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("cannot parse %s=%q as int, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
