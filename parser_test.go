package pathkit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		platform Platform
		want     Components
	}{
		{
			name:     "rooted file with two extensions",
			in:       "/temp/place/somefile.abc.xyz",
			platform: Posix,
			want:     Components{Dirs: "/temp/place/", Filename: "somefile.abc.xyz", Base: "somefile.abc", Ext: ".xyz"},
		},
		{
			name:     "unc share with dotfile",
			in:       "//peer/share/temp/.xyz",
			platform: Posix,
			want:     Components{Volume: "//peer/share", Dirs: "/temp/", Filename: ".xyz", Ext: ".xyz"},
		},
		{
			name:     "bare unc share",
			in:       "//peer/share",
			platform: Posix,
			want:     Components{Volume: "//peer/share"},
		},
		{
			name:     "relative",
			in:       "relative/file",
			platform: Posix,
			want:     Components{Dirs: "relative/", Filename: "file", Base: "file"},
		},
		{
			name:     "directory",
			in:       "/temp/",
			platform: Posix,
			want:     Components{Dirs: "/temp/"},
		},
		{
			name:     "trailing parent reference",
			in:       "a/b/..",
			platform: Posix,
			want:     Components{Dirs: "a/b/.."},
		},
		{
			name:     "trailing dot is stripped",
			in:       "/docs/name.",
			platform: Posix,
			want:     Components{Dirs: "/docs/", Filename: "name", Base: "name"},
		},
		{
			name:     "drive letter is a directory on posix",
			in:       "c:/temp",
			platform: Posix,
			want:     Components{Dirs: "c:/", Filename: "temp", Base: "temp"},
		},
		{
			name:     "windows drive",
			in:       `c:\temp\file.txt`,
			platform: Windows,
			want:     Components{Volume: "c:", Dirs: "/temp/", Filename: "file.txt", Base: "file", Ext: ".txt"},
		},
		{
			name:     "windows drive relative",
			in:       "C:file",
			platform: Windows,
			want:     Components{Volume: "C:", Filename: "file", Base: "file"},
		},
		{
			name:     "windows unc",
			in:       `\\server\share\dir\x.y`,
			platform: Windows,
			want:     Components{Volume: "//server/share", Dirs: "/dir/", Filename: "x.y", Base: "x", Ext: ".y"},
		},
		{
			name:     "url",
			in:       "https://example.com/a/b.html?x=1&y#frag",
			platform: Posix,
			want: Components{
				Protocol: "https://",
				Host:     "example.com",
				Site:     "https://example.com",
				Dirs:     "example.com/a/",
				Filename: "b.html",
				Base:     "b",
				Ext:      ".html",
				Query:    "?x=1&y",
				Fragment: "#frag",
			},
		},
		{
			name:     "host only url",
			in:       "gs://bucket",
			platform: Windows,
			want:     Components{Protocol: "gs://", Host: "bucket", Site: "gs://bucket", Dirs: "bucket"},
		},
		{
			name:     "empty",
			in:       "",
			platform: Posix,
			want:     Components{},
		},
		{
			name:     "single name",
			in:       "a",
			platform: Posix,
			want:     Components{Filename: "a", Base: "a"},
		},
		{
			name:     "single name with extension",
			in:       "a.tar",
			platform: Windows,
			want:     Components{Filename: "a.tar", Base: "a", Ext: ".tar"},
		},
		{
			name:     "single dot",
			in:       ".",
			platform: Posix,
			want:     Components{Dirs: "."},
		},
		{
			name:     "single parent reference",
			in:       "..",
			platform: Posix,
			want:     Components{Dirs: ".."},
		},
		{
			name:     "bare drive",
			in:       "c:",
			platform: Windows,
			want:     Components{Volume: "c:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser(WithPlatform(tt.platform)).Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
			if got.Base+got.Ext != got.Filename {
				t.Errorf("Base+Ext = %q, Filename = %q", got.Base+got.Ext, got.Filename)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"a//b", "/temp//x.txt", "https://host//x"} {
		_, err := NewParser(WithPlatform(Posix)).Parse(in)
		if !IsMalformed(err) {
			t.Errorf("Parse(%q): expected ErrMalformedPath, got %v", in, err)
		}
	}
}

func TestKeepTrailingDots(t *testing.T) {
	got, err := NewParser(WithPlatform(Posix), KeepTrailingDots()).Parse("/docs/name.")
	if err != nil {
		t.Fatal(err)
	}
	want := Components{Dirs: "/docs/", Filename: "name.", Base: "name", Ext: "."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWithSeparator(t *testing.T) {
	p := NewParser(WithPlatform(Posix), WithSeparator(':'))
	if p.Separator() != ':' {
		t.Fatalf("Separator() = %q", p.Separator())
	}
	got, err := p.Parse("usr:local:bin")
	if err != nil {
		t.Fatal(err)
	}
	if got.Dirs != "usr/local/" || got.Filename != "bin" {
		t.Errorf("got %+v", got)
	}
	if s := p.Canonicalize("a:b"); s != "a/b" {
		t.Errorf("Canonicalize = %q", s)
	}
}

func TestParserPlatform(t *testing.T) {
	if NewParser(WithPlatform(Windows)).Separator() != '\\' {
		t.Error("windows parser should translate backslashes")
	}
	if NewParser(WithPlatform(Posix)).Separator() != '/' {
		t.Error("posix parser should not translate")
	}
	if NewParser().Platform() == NativePlatform {
		t.Error("Platform() should be resolved")
	}
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]Platform{
		"":        NativePlatform,
		"native":  NativePlatform,
		"posix":   Posix,
		"Linux":   Posix,
		"windows": Windows,
		" NT ":    Windows,
	}
	for in, want := range tests {
		got, err := ParsePlatform(in)
		if err != nil || got != want {
			t.Errorf("ParsePlatform(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePlatform("plan9"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestComponentsRoundTrip(t *testing.T) {
	parser := NewParser(WithPlatform(Windows))
	for _, in := range []string{
		"c:/temp/file.txt",
		"//server/share/x/",
		"https://example.com/a/b?q=1#top",
		"relative/dir/",
		"/rooted/file",
		"",
		"a",
		"a.tar",
		".",
		"..",
		"c:",
		"gs://bucket",
	} {
		c, err := parser.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if c.String() != in {
			t.Errorf("String() = %q, want %q", c.String(), in)
		}
		again, err := parser.Parse(c.String())
		if err != nil {
			t.Fatalf("Parse(%q) again: %v", c.String(), err)
		}
		if diff := cmp.Diff(c, again); diff != "" {
			t.Errorf("reparse of %q mismatch (-first +second):\n%s", in, diff)
		}
	}
}

func TestParamsAndFragments(t *testing.T) {
	c, err := NewParser(WithPlatform(Posix)).Parse("https://host/search?q=go&page=2&flag#a&b")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"q": "go", "page": "2", "flag": ""}
	if diff := cmp.Diff(want, c.Params()); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, c.Fragments()); diff != "" {
		t.Errorf("Fragments mismatch (-want +got):\n%s", diff)
	}
	if len(Components{}.Params()) != 0 {
		t.Error("empty query should give no params")
	}
}
