package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/stamp/pkg"
)

// pathEnv names the environment variable holding the template search path.
const pathEnv = pkg.EnvPrefix + "PATH"

// configFile is the base name of the configuration file in [pkg.ConfigDir].
const configFile = "config.yaml"

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// searchPath returns the directories searched for named templates: each of
// dirs, then the entries of $STAMP_PATH, then the templates directory in
// [pkg.ConfigDir]. Entries that are not existing directories are dropped.
func searchPath(dirs []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pathEnv), pkg.ConfigPath("templates")),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(list)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
