package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// loadDotEnv copies the entries of a dotenv file into the process environment
// and returns the keys it set. A missing file is not an error. Variables that
// are already set (non-empty) win over the file.
func loadDotEnv(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	entries, err := parseDotEnv(f)
	if err != nil {
		return nil, err
	}

	var set []string
	for _, e := range entries {
		if os.Getenv(e.key) != "" {
			continue
		}
		if err := os.Setenv(e.key, e.value); err != nil {
			return set, err
		}
		set = append(set, e.key)
	}
	return set, nil
}

type dotEnvEntry struct {
	key   string
	value string
}

// parseDotEnv reads KEY=VALUE lines in file order.
//
//   - blank lines, "# comments" and lines without "=" are skipped
//   - an "export " prefix is allowed
//   - single or double quotes around a value are removed
//   - unquoted values end at " #"
//
// A key repeated later in the file replaces the earlier value.
func parseDotEnv(r io.Reader) ([]dotEnvEntry, error) {
	var entries []dotEnvEntry
	index := make(map[string]int)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		e := dotEnvEntry{key: k, value: dotEnvValue(strings.TrimSpace(v))}

		if i, seen := index[k]; seen {
			entries[i] = e
			continue
		}
		index[k] = len(entries)
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

func dotEnvValue(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
