package gcs

import (
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/pathkit"
)

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		in             string
		bucket, object string
	}{
		{"gs://media/images/cat.png", "media", "images/cat.png"},
		{"gs://media/images/", "media", "images/"},
		{"gs://media", "media", ""},
	}
	for _, tt := range tests {
		p := pathkit.MustParse(tt.in, pathkit.WithPlatform(pathkit.Posix))
		bucket, object, err := ParseObjectURL(p)
		if err != nil {
			t.Errorf("ParseObjectURL(%q) error: %v", tt.in, err)
			continue
		}
		if bucket != tt.bucket || object != tt.object {
			t.Errorf("ParseObjectURL(%q) = %q, %q; want %q, %q", tt.in, bucket, object, tt.bucket, tt.object)
		}
	}

	for _, bad := range []string{"s3://bucket/key", "/local/file.txt"} {
		_, _, err := ParseObjectURL(pathkit.MustParse(bad, pathkit.WithPlatform(pathkit.Posix)))
		if !pathkit.IsUnsupported(err) {
			t.Errorf("ParseObjectURL(%q): expected ErrUnsupportedOperation, got %v", bad, err)
		}
	}
}

func TestObjectKey(t *testing.T) {
	a := New(nil, "bucket", WithPrefix("/tenant/"))

	tests := []struct {
		in   string
		want string
	}{
		{"report.csv", "tenant/report.csv"},
		{"/2024/q1/report.csv", "tenant/2024/q1/report.csv"},
		{"2024/./q1/../q2/report.csv", "tenant/2024/q2/report.csv"},
		{"", "tenant/"},
	}
	for _, tt := range tests {
		got, err := a.objectKey("test", tt.in)
		if err != nil {
			t.Errorf("objectKey(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("objectKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := a.objectKey("test", "../other-tenant/x"); !errors.Is(err, pathkit.ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}
}

func TestDirKey(t *testing.T) {
	plain := New(nil, "bucket")
	if k, _ := plain.dirKey("test", "/"); k != "" {
		t.Errorf("root dirKey = %q, want empty", k)
	}
	if k, _ := plain.dirKey("test", "logs"); k != "logs/" {
		t.Errorf("dirKey(logs) = %q", k)
	}
	prefixed := New(nil, "bucket", WithPrefix("base"))
	if got := prefixed.relative("base/logs/app.log"); got != "logs/app.log" {
		t.Errorf("relative = %q", got)
	}
}

func TestMapGCSError(t *testing.T) {
	for _, err := range []error{storage.ErrObjectNotExist, storage.ErrBucketNotExist, fmt.Errorf("wrapped: %w", storage.ErrObjectNotExist)} {
		if !pathkit.IsNotExist(mapGCSError("read", "x", err)) {
			t.Errorf("mapGCSError(%v) should map to ErrNotExist", err)
		}
	}
	other := errors.New("boom")
	if got := mapGCSError("read", "x", other); !errors.Is(got, other) {
		t.Errorf("unrelated errors should be kept, got %v", got)
	}
}

func TestSameState(t *testing.T) {
	a := map[string]objectState{"x.json": {generation: 1, size: 2}}
	b := map[string]objectState{"x.json": {generation: 1, size: 2}}
	if !sameState(a, b) {
		t.Error("equal states reported as changed")
	}
	b["x.json"] = objectState{generation: 2, size: 2}
	if sameState(a, b) {
		t.Error("new generation not detected")
	}
	if sameState(a, map[string]objectState{}) {
		t.Error("deletion not detected")
	}
}
