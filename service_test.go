package pathkit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gobeaver/pathkit"
	_ "github.com/gobeaver/pathkit/driver/local"
	"github.com/gobeaver/pathkit/driver/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrivers(t *testing.T) {
	assert.Subset(t, pathkit.Drivers(), []string{"local", "memory"})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *pathkit.Config
		wantErr bool
	}{
		{"memory", &pathkit.Config{Driver: "memory", Platform: "posix"}, false},
		{"local", &pathkit.Config{Driver: "local", LocalRoot: t.TempDir()}, false},
		{"unknown", &pathkit.Config{Driver: "ftp"}, true},
		{"bad separator", &pathkit.Config{Driver: "memory", Separator: "ab"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := pathkit.New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc.FS())
		})
	}
}

func TestServiceOperations(t *testing.T) {
	ctx := context.Background()
	svc, err := pathkit.New(&pathkit.Config{Driver: "memory", Platform: "windows"})
	require.NoError(t, err)
	assert.Equal(t, pathkit.Windows, svc.Parser().Platform())

	dst, err := svc.Parse(`\reports\2024\q1.csv`)
	require.NoError(t, err)
	require.NoError(t, svc.WriteFile(ctx, dst, []byte("q1")))

	ok, err := svc.Exists(ctx, dst)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := svc.ReadFile(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "q1", string(data))

	matches, err := svc.Glob(ctx, `\reports\*\*.csv`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, `\reports\2024\q1.csv`, matches[0].Native())

	archive, err := svc.Parse(`\archive\`)
	require.NoError(t, err)
	require.NoError(t, svc.Copy(ctx, archive, pathkit.Value(dst)))

	entries, err := svc.Select(ctx, archive, pathkit.Ext(".csv"), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/archive/q1.csv", entries[0].Path.String())

	var walked []string
	require.NoError(t, svc.Walk(ctx, archive, func(dir pathkit.Path, _, files []pathkit.Path) error {
		walked = append(walked, names(files)...)
		return nil
	}))
	assert.Equal(t, []string{"/archive/q1.csv"}, walked)

	require.NoError(t, svc.Remove(ctx, pathkit.Literal(`\archive\*.csv`)))
	ok, err = svc.Exists(ctx, archive.MustJoin("q1.csv"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := pathkit.NewService(nil, memory.New())
	token, err := svc.Watch(ctx, "*.log")
	require.NoError(t, err)
	assert.False(t, token.HasChanged())

	noWatch := pathkit.NewService(posix, plainFS{memory.New()})
	_, err = noWatch.Watch(ctx, "*.log")
	assert.True(t, errors.Is(err, pathkit.ErrNotSupported))
}

func TestGlobalInstance(t *testing.T) {
	pathkit.Reset()
	t.Cleanup(pathkit.Reset)
	t.Cleanup(func() { pathkit.Logger().SetLevel(logrus.InfoLevel) })

	t.Setenv("BEAVER_PATHKIT_DRIVER", "memory")
	t.Setenv("BEAVER_PATHKIT_LOG_LEVEL", "warn")

	svc, err := pathkit.Default()
	require.NoError(t, err)
	again, err := pathkit.Default()
	require.NoError(t, err)
	assert.Same(t, svc, again)
	assert.Equal(t, logrus.WarnLevel, pathkit.Logger().GetLevel())
}

func TestBuilderPrefix(t *testing.T) {
	t.Setenv("APP_PATHKIT_DRIVER", "memory")
	t.Setenv("APP_PATHKIT_PLATFORM", "windows")

	svc, err := pathkit.WithPrefix("APP_").New()
	require.NoError(t, err)
	assert.Equal(t, pathkit.Windows, svc.Parser().Platform())
}
