package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is a snapshot of the process environment, keyed by variable name
type Config map[string]string

func New() Config {
	return FromEnviron(os.Environ())
}

// FromEnviron builds a Config from KEY=value entries
func FromEnviron(environ []string) Config {
	envAsMap := make(Config, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	key, value, _ = strings.Cut(entry, "=")
	return key, value
}

func GetString(config Config, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config Config, key string, defaultValue int) int {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return asInt
}

func GetBool(config Config, key string, defaultValue bool) bool {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return asBool
}

// GetSeconds reads an integer number of seconds as a duration
func GetSeconds(config Config, key string, defaultSeconds int) time.Duration {
	return time.Duration(GetInt(config, key, defaultSeconds)) * time.Second
}

// GetList splits a comma-separated value, dropping blank entries
func GetList(config Config, key string) []string {
	var out []string
	for _, item := range strings.Split(GetString(config, key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
