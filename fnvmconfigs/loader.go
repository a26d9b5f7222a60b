package fnvmconfigs

import (
	_ "embed"
	"os"

	"github.com/reusee/fnvm/configs"
)

//go:embed schema.cue
var schema string

var filenames = []string{
	"fnvm.cue",
	".fnvm.cue",
}

// ConfigsLoader reads fnvm.cue or .fnvm.cue from the working directory, the user config
// directory and /etc. Files found earlier take precedence.
// The loader must not depend on the logger, whose level may come from configs.
func (Module) ConfigsLoader() configs.Loader {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")

	return configs.NewLoader(configs.Discover(filenames, dirs...), schema)
}
