package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/docdiagrams/pkg/errors"
)

// ConfigFileName is the config file looked up in the working directory.
const ConfigFileName = ".docdiagrams.toml"

// LoadConfig decodes the TOML file at path on top of base and returns the
// merged options. Keys that do not name an option are rejected so that
// typos surface instead of being silently ignored. Durations are written
// as strings such as "500ms" or "1m".
func LoadConfig(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeUnreadableFile, err, "config %s", path)
	}

	opts := base
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return base, errors.New(errors.ErrCodeInvalidInput,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// FindConfig returns the path of ConfigFileName in dir, or "" when there
// is none.
func FindConfig(dir string) string {
	path := filepath.Join(dir, ConfigFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
