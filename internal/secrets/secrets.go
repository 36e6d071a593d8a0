// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads NCBI credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the
// trimmed file contents are the value.
//
// Supported key files: ncbi-email, ncbi-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Known key files under the secrets directory.
const (
	// KeyEmail identifies the caller to NCBI E-utilities.
	KeyEmail = "ncbi-email"

	// KeyAPIKey unlocks the higher NCBI rate ceiling.
	KeyAPIKey = "ncbi-api-key"
)

// DefaultDir is the conventional secrets location.
const DefaultDir = ".secrets/"

// Load reads every file in dir into a key → value map. A missing
// directory is an empty map, not an error; unreadable files warn on
// stderr and are skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Resolve returns override when set, otherwise the stored secret for
// key, otherwise empty.
func Resolve(secrets map[string]string, key, override string) string {
	if override != "" {
		return override
	}
	return secrets[key]
}
