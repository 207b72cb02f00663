package env

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Prefix is the namespace of stripcheck's own environment variables
const Prefix = "STRIPCHECK_"

// LoadDotEnv parses a .env file and returns key-value pairs.
// Supports: KEY=value, export KEY=value, KEY="quoted value", KEY='single quoted', # comments
func LoadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	return result, nil
}

// LoadAndExportDotEnv parses a .env file and exports its values to the OS
// environment. Variables already set are left alone. The returned slice
// lists the keys that were exported, sorted.
func LoadAndExportDotEnv(path string) ([]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}

	var exported []string
	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return exported, fmt.Errorf("exporting %s: %w", k, err)
		}
		exported = append(exported, k)
	}
	sort.Strings(exported)

	return exported, nil
}

// Lookup returns the stripcheck variable name (without Prefix) from the environment
func Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// String returns STRIPCHECK_<name> or the default
func String(name, defaultVal string) string {
	if v, ok := Lookup(name); ok {
		return v
	}
	return defaultVal
}

// Bool returns STRIPCHECK_<name> parsed as a boolean or the default
func Bool(name string, defaultVal bool) bool {
	if v, ok := Lookup(name); ok {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return defaultVal
}
