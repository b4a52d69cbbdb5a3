package common

import (
	"fmt"
	"strings"
)

// AccountFromArgs extracts the optional account selector from request
// arguments. An empty string means "use the resolver's default".
func AccountFromArgs(args map[string]interface{}) string {
	if v, ok := args["account"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// StringArg extracts a string argument, returning fallback when it is
// absent or empty.
func StringArg(args map[string]interface{}, name, fallback string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

// RequiredStringArg extracts a string argument that must be present and
// non-empty.
func RequiredStringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// IntArg extracts a numeric argument. JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, name string, fallback int) int {
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return fallback
}

// BoolArg extracts a boolean argument, returning fallback when absent.
func BoolArg(args map[string]interface{}, name string, fallback bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return fallback
}

// SanitizeStringList trims whitespace, drops empty entries, and removes
// duplicates while preserving first-seen order.
func SanitizeStringList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
