// Package pathkit provides an immutable path value for Go that knows its own
// structure and supports an algebra of path operators.
//
// A [Path] is parsed once into its components: volume (drive letter or UNC
// share), protocol, host and site for URLs, directories, filename, base name
// and extension, query and fragment. Every operator returns a new Path that
// has been parsed again under the same rules, so the components always agree
// with the rendered string.
//
// # Parsing
//
//	p, err := pathkit.Parse("/temp/place/somefile.abc.xyz")
//	p.Dirs()     // "/temp/place/"
//	p.Base()     // "somefile.abc"
//	p.Ext()      // ".xyz"
//
//	w := pathkit.MustParse(`c:\temp\file.txt`, pathkit.WithPlatform(pathkit.Windows))
//	w.Volume()   // "c:"
//	w.String()   // "c:/temp/file.txt"
//	w.Native()   // `c:\temp\file.txt`
//
// Paths always render with "/". The platform only decides which extra input
// separator is accepted and whether drive letters are recognized.
//
// # Operators
//
// [Path.Join] is plain concatenation with one separator between the operands:
//
//	pathkit.MustParse("/tmp/dest.txt").MustJoin("copy_one") // "/tmp/dest.txt/copy_one"
//
// [Path.Fuse] behaves like "cd" and also stacks names and extensions:
//
//	a := pathkit.MustParse("/temp/destination.txt")
//	a.FuseString("_compressed.zip") // "/temp/destination_compressed.txt.zip"
//	a.FuseString("../backups/")     // "/backups/destination.txt"
//
// [Path.Subtract] removes a prefix:
//
//	pathkit.MustParse("/temp/backups").SubtractString("/temp/") // "backups"
//
// # Collaborators
//
// Paths perform no I/O. Filesystem work is delegated to a [FileSystem]
// collaborator that receives native path strings. The driver packages
// provide local disk, in-memory and Google Cloud Storage collaborators, and
// [MountManager] combines several of them under one virtual tree:
//
//	mounts := pathkit.NewMountManager()
//	mounts.Mount("/local", localDriver)
//	mounts.Mount("/cloud", gcsDriver)
//
//	err := pathkit.Copy(ctx, mounts, nil, pathkit.MustParse("/cloud/backup/"),
//	    pathkit.Literal("/local/reports/*.csv"))
//
// Multi-target operations collect every failure and return them together as
// a *multierror.Error.
//
// # Error Handling
//
//	_, err := pathkit.MustParse("/backups/").FuseString("../../temp/")
//	if pathkit.IsTooManyParentRefs(err) {
//	    // ".." walked above the root
//	}
//
//	var pathErr *pathkit.PathError
//	if errors.As(err, &pathErr) {
//	    fmt.Printf("Operation: %s, Path: %s\n", pathErr.Op, pathErr.Path)
//	}
//
// # Configuration
//
// A [Service] can be configured via environment variables such as
// BEAVER_PATHKIT_DRIVER and BEAVER_PATHKIT_PLATFORM ([WithPrefix] replaces the
// BEAVER_ part), or programmatically via the [Config] struct:
//
//	svc, err := pathkit.New(&pathkit.Config{
//	    Driver:    "local",
//	    LocalRoot: "/srv/data",
//	    Platform:  "posix",
//	    ReadOnly:  true,
//	})
//
// With ReadOnly set, the driver is wrapped in a [ReadOnlyFileSystem].
package pathkit
