package configs

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads CUE files lazily. Earlier files take precedence.
type Loader struct {
	paths    []string
	getRoots func() ([]rootInfo, error)
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		paths: filePaths,

		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {

			var schema cue.Value
			if schemaSrc != "" {
				ctx := cuecontext.New()
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, fmt.Errorf("schema: %w", err)
				}
			}

			for _, filePath := range filePaths {
				content, err := os.ReadFile(filePath)
				if err != nil {
					return nil, err
				}

				ctx := cuecontext.New()
				value := ctx.CompileBytes(
					content,
					cue.Filename(filePath),
				)
				if err = value.Err(); err != nil {
					return nil, fmt.Errorf("%s: %w", filePath, err)
				}

				if schema.Exists() {
					if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
						return nil, fmt.Errorf("%s: %w", filePath, err)
					}
				}

				ret = append(ret, rootInfo{
					value: value,
					path:  filePath,
				})
			}

			return
		}),
	}
}

// Discover returns the existing files named one of filenames, searched in dirs in order.
func Discover(filenames []string, dirs ...string) (paths []string) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (l Loader) Paths() []string {
	return l.paths
}

type rootInfo struct {
	value cue.Value
	path  string
}

func (l Loader) roots() ([]rootInfo, error) {
	if l.getRoots == nil {
		return nil, nil
	}
	return l.getRoots()
}

func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		roots, err := l.roots()
		if err != nil {
			yield(nil, err)
			return
		}

		cuePath := cue.ParsePath(path)
		for _, info := range roots {
			value := info.value.LookupPath(cuePath)
			if value.Exists() && value.Err() == nil {
				if !yield(&value, nil) {
					break
				}
			}
		}
	}
}

func (l Loader) AssignFirst(path string, target any) error {
	roots, err := l.roots()
	if err != nil {
		return err
	}

	cuePath := cue.ParsePath(path)
	for _, info := range roots {
		value := info.value.LookupPath(cuePath)
		if value.Exists() && value.Err() == nil {
			if err := value.Decode(target); err != nil {
				return fmt.Errorf("%s: %s: %w", info.path, path, err)
			}
			return nil
		}
	}

	return fmt.Errorf("%s: %w", path, ErrValueNotFound)
}
