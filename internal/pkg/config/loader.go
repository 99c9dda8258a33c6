// Package config loads process settings fail-open: a value that fails
// validation is replaced by its default and reported as a warning, so a
// long-running worker never refuses to start over one bad variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is a loaded value plus what happened while loading it.
// FallbackApplied is true only when the variable was set but rejected.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it and validates it. An unset variable yields
// defaultValue without a warning; a variable that fails parse or validate
// yields defaultValue with one warning of the form
//
//	Invalid KEY='value': reason, falling back to default 'default'
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return Result[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: value}
}

// LoadEnvString loads a string; validate may be nil.
func LoadEnvString(envKey, defaultValue string, validate func(string) error) Result[string] {
	return LoadEnv(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

func LoadEnvInt(envKey string, defaultValue int, validate func(int) error) Result[int] {
	return LoadEnv(envKey, defaultValue, strconv.Atoi, validate)
}

func LoadEnvDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadEnvList loads a comma-separated list and validates every element.
func LoadEnvList(envKey string, defaultValue []string, validate func(string) error) Result[[]string] {
	return LoadEnv(envKey, defaultValue, splitList, func(items []string) error {
		if validate == nil {
			return nil
		}
		for _, item := range items {
			if err := validate(item); err != nil {
				return err
			}
		}
		return nil
	})
}

func splitList(raw string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return out, nil
}
