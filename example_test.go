package pathkit_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobeaver/pathkit"
	"github.com/gobeaver/pathkit/driver/memory"
)

func ExampleParse() {
	p, err := pathkit.Parse("/temp/place/somefile.abc.xyz", pathkit.WithPlatform(pathkit.Posix))
	if err != nil {
		panic(err)
	}

	fmt.Println(p.Dirs())
	fmt.Println(p.Filename())
	fmt.Println(p.Base())
	fmt.Println(p.Ext())
	// Output:
	// /temp/place/
	// somefile.abc.xyz
	// somefile.abc
	// .xyz
}

func ExampleParse_windows() {
	p := pathkit.MustParse(`c:\temp\file.txt`, pathkit.WithPlatform(pathkit.Windows))

	fmt.Println(p.Volume())
	fmt.Println(p.String())
	fmt.Println(p.Native())
	// Output:
	// c:
	// c:/temp/file.txt
	// c:\temp\file.txt
}

func ExamplePath_Join() {
	dest := pathkit.MustParse("/tmp/dest.txt", pathkit.WithPlatform(pathkit.Posix))

	joined, err := dest.JoinString("copy_one")
	if err != nil {
		panic(err)
	}
	fmt.Println(joined)

	_, err = pathkit.MustParse("/backups/", pathkit.WithPlatform(pathkit.Posix)).JoinString("//machine/share/temp/")
	fmt.Println(pathkit.IsIncompatibleRoots(err))
	// Output:
	// /tmp/dest.txt/copy_one
	// true
}

func ExamplePath_Fuse() {
	dest := pathkit.MustParse("/temp/destination.txt", pathkit.WithPlatform(pathkit.Posix))

	compressed, _ := dest.FuseString("_compressed.zip")
	moved, _ := dest.FuseString("../backups/")
	_, err := pathkit.MustParse("/backups/", pathkit.WithPlatform(pathkit.Posix)).FuseString("../../temp/")

	fmt.Println(compressed)
	fmt.Println(moved)
	fmt.Println(pathkit.IsTooManyParentRefs(err))
	// Output:
	// /temp/destination_compressed.txt.zip
	// /backups/destination.txt
	// true
}

func ExamplePath_Subtract() {
	p := pathkit.MustParse("/temp/backups", pathkit.WithPlatform(pathkit.Posix))

	rel, _ := p.SubtractString("/temp/")
	fmt.Println(rel)
	// Output:
	// backups
}

func ExamplePath_Ascend() {
	for p := range pathkit.MustParse("/usr/local/bin", pathkit.WithPlatform(pathkit.Posix)).Ascend() {
		fmt.Println(p)
	}
	// Output:
	// /usr/local/bin
	// /usr/local
	// /usr
	// /
}

func ExampleMountManager() {
	ctx := context.Background()

	mounts := pathkit.NewMountManager()
	_ = mounts.Mount("/local", memory.New())
	_ = mounts.Mount("/cloud", memory.New())

	_ = mounts.Write(ctx, "/local/reports/q1.csv", strings.NewReader("q1"))
	_ = mounts.Write(ctx, "/local/reports/q2.csv", strings.NewReader("q2"))

	parser := pathkit.NewParser(pathkit.WithPlatform(pathkit.Posix))
	err := pathkit.Copy(ctx, mounts, parser, pathkit.MustParse("/cloud/backup/", pathkit.WithPlatform(pathkit.Posix)),
		pathkit.Literal("/local/reports/*.csv"))
	if err != nil {
		panic(err)
	}

	data, _ := mounts.ReadAll(ctx, "/cloud/backup/q2.csv")
	fmt.Println(string(data))
	// Output:
	// q2
}
