package lv2

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// DefaultLV2Path returns the platform's conventional bundle search path.
func DefaultLV2Path() string {
	var dirs []string
	switch runtime.GOOS {
	case "darwin":
		dirs = []string{
			"~/.lv2",
			"~/Library/Audio/Plug-Ins/LV2",
			"/usr/local/lib/lv2",
			"/usr/lib/lv2",
			"/Library/Audio/Plug-Ins/LV2",
		}
	case "windows":
		dirs = []string{`%APPDATA%\LV2`, `%COMMONPROGRAMFILES%\LV2`}
	default:
		dirs = []string{"~/.lv2", "/usr/local/lib/lv2", "/usr/lib/lv2"}
	}
	return strings.Join(dirs, string(os.PathListSeparator))
}

// searchDirs splits a search path and expands "~" and environment
// variables in each entry. Empty entries are dropped.
func searchDirs(path string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(path) {
		if dir = expandPath(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func expandPath(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home + dir[1:]
		}
	}
	if runtime.GOOS == "windows" {
		dir = expandWindowsVars(dir)
	}
	return os.ExpandEnv(dir)
}

func expandWindowsVars(dir string) string {
	for {
		start := strings.IndexByte(dir, '%')
		if start < 0 {
			return dir
		}
		end := strings.IndexByte(dir[start+1:], '%')
		if end < 0 {
			return dir
		}
		end += start + 1
		dir = dir[:start] + os.Getenv(dir[start+1:end]) + dir[end+1:]
	}
}

// bundleDirs lists the bundle candidates under dir in lexical order:
// every non-hidden entry that is, or links to, a directory.
func bundleDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var bundles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}
		bundles = append(bundles, path)
	}
	sort.Strings(bundles)
	return bundles, nil
}
