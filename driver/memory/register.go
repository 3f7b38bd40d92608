package memory

import "github.com/gobeaver/pathkit"

func init() {
	pathkit.RegisterDriver("memory", func(cfg *pathkit.Config) (pathkit.FileSystem, error) {
		return New(), nil
	})
}
