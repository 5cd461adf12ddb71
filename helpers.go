package extbuild

import (
	"fmt"
	"os"
	"strings"
)

// MatchesExtension checks if a filename has any of the given extensions.
//
// The check is case-insensitive and works with or without the leading dot:
//
//	MatchesExtension("_brotli.SO", ".so", ".dll") // true
func MatchesExtension(filename string, extensions ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// BuildError creates a standardized tool failure error with output context.
//
// With error and output:
//
//	compile python/_brotli.c failed: exit status 1
//
//	Build output:
//	python/_brotli.c:1:10: fatal error: brotli/decode.h: No such file or directory
//
// Without output only the first line is produced.
func BuildError(step string, output []string, err error) error {
	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s failed: %v", step, err)
	} else {
		prefix = fmt.Sprintf("%s failed", step)
	}

	outputStr := strings.TrimSpace(strings.Join(output, "\n"))
	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
