package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DefaultConfigName is looked up on the search path when no config file is
// named on the command line.
const DefaultConfigName = "raster2json.yaml"

// ConfigSearchPathEnv holds extra directories, separated like PATH, searched
// before the working directory and the executable's directory.
const ConfigSearchPathEnv = EnvPrefix + "_CONFIG_PATH"

type FileResolver struct {
	Dirs []string
}

func NewFileResolver(searchPath string) *FileResolver {
	resolver := &FileResolver{}

	for _, dir := range filepath.SplitList(searchPath) {
		dir = strings.TrimSpace(dir)
		if len(dir) == 0 {
			continue
		}
		resolver.Dirs = append(resolver.Dirs, dir)
	}

	if cwd, err := os.Getwd(); err == nil {
		resolver.Dirs = append(resolver.Dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		resolver.Dirs = append(resolver.Dirs, filepath.Dir(exe))
	}
	return resolver
}

// Resolve returns the first regular file called name in Dirs. Absolute
// names are only checked for existence.
func (r *FileResolver) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, checkFile(name)
	}

	for _, dir := range r.Dirs {
		path := filepath.Join(dir, name)
		if checkFile(path) == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("%s not found in %s", name, strings.Join(r.Dirs, string(filepath.ListSeparator)))
}

// FindConfig returns the default config file on the search path, or "" if
// there is none.
func FindConfig(searchPath string) string {
	path, err := NewFileResolver(searchPath).Resolve(DefaultConfigName)
	if err != nil {
		return ""
	}
	return path
}

func checkFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.Errorf("%s is not a regular file", path)
	}
	return nil
}
