package fnvmconfigs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/configs"
)

// GraphPaths are directories searched for graph files. -graph-path directories come first,
// followed by graph_paths of every config file.
type GraphPaths []string

var graphPathFlags = cmds.Collect[string]("-graph-path", "add a directory to search for graph files")

func (Module) GraphPaths(
	loader configs.Loader,
) GraphPaths {
	ret := slices.Clone(*graphPathFlags)
	for paths := range configs.All[[]string](loader, "graph_paths") {
		ret = append(ret, paths...)
	}
	return GraphPaths(ret)
}

var graphExts = []string{"", ".yaml", ".yml"}

// Resolve finds a graph file by name. Existing paths are used as is.
func (g GraphPaths) Resolve(name string) (string, error) {
	if isFile(name) {
		return name, nil
	}
	if !filepath.IsAbs(name) {
		for _, dir := range g {
			for _, ext := range graphExts {
				path := filepath.Join(dir, name+ext)
				if isFile(path) {
					return path, nil
				}
			}
		}
	}
	return "", fmt.Errorf("graph not found: %s", name)
}

func isFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}
