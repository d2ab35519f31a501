package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// envSearchPaths are tried in order; the first .env found is used
var envSearchPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads KEY=VALUE pairs from the nearest .env file. Variables that are
// already set in the environment are left alone.
func LoadEnv() error {
	for _, path := range envSearchPaths {
		file, err := os.Open(path)
		if err != nil {
			continue
		}
		defer file.Close()
		return loadEnvFrom(file.Name(), bufio.NewScanner(file))
	}
	return nil
}

func loadEnvFrom(name string, scanner *bufio.Scanner) error {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

// GetEnv gets environment variable with default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets integer environment variable with default
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvBool gets boolean environment variable with default
func GetEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

// GetEnvList splits a comma separated variable, dropping blanks
func GetEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Settings collects the importer's environment configuration
type Settings struct {
	DataDir     string
	ExportPath  string
	SourcesPath string
	Encodings   []string
	Collection  string
	StoreKind   string
	SQLitePath  string
	BatchSize   int
	WebHost     string
	WebPort     int
}

// Load reads Settings from the environment, after LoadEnv
func Load() Settings {
	dataDir := GetEnv("RESTROOM_DATA_DIR", filepath.Join("doc", "restroom"))
	return Settings{
		DataDir:     dataDir,
		ExportPath:  GetEnv("RESTROOM_EXPORT_PATH", filepath.Join(dataDir, "restrooms_master.jsonl")),
		SourcesPath: GetEnv("RESTROOM_SOURCES", ""),
		Encodings:   GetEnvList("RESTROOM_ENCODINGS", []string{"utf-8", "cp949", "euc-kr"}),
		Collection:  GetEnv("RESTROOM_COLLECTION", "restrooms_master"),
		StoreKind:   GetEnv("RESTROOM_STORE", "postgres"),
		SQLitePath:  GetEnv("RESTROOM_SQLITE_PATH", filepath.Join(dataDir, "restrooms.db")),
		BatchSize:   GetEnvInt("RESTROOM_BATCH_SIZE", 400),
		WebHost:     GetEnv("WEB_HOST", "localhost"),
		WebPort:     GetEnvInt("WEB_PORT", 8080),
	}
}
