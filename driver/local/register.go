package local

import "github.com/gobeaver/pathkit"

func init() {
	pathkit.RegisterDriver("local", func(cfg *pathkit.Config) (pathkit.FileSystem, error) {
		return New(cfg.LocalRoot)
	})
}
