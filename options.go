package pathkit

import "io/fs"

// Option represents a write option
type Option func(*Options)

// Options contains the settings collaborators honor when writing files.
type Options struct {
	// ContentType specifies the MIME type of the file
	ContentType string

	// Metadata contains additional metadata for the file
	Metadata map[string]string

	// Overwrite allows replacing an existing file. Drivers reject a write
	// to an existing file unless it is set.
	Overwrite bool

	// Permissions is applied by backends with POSIX modes. Zero keeps the
	// backend default.
	Permissions fs.FileMode
}

// WithContentType sets the content type of the file
func WithContentType(contentType string) Option {
	return func(o *Options) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the file
func WithMetadata(metadata map[string]string) Option {
	return func(o *Options) {
		o.Metadata = metadata
	}
}

// WithOverwrite enables or disables overwriting existing files
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

// WithPermissions sets the file mode for backends that support it.
func WithPermissions(mode fs.FileMode) Option {
	return func(o *Options) {
		o.Permissions = mode
	}
}

// ApplyOptions folds opts into an Options value. Drivers call it to read
// the options passed to Write.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
