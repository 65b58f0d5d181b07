package storage

// MediaLocator resolves job file paths to locally readable media files. The
// download agent writes the files; this side only reads them.
type MediaLocator interface {
	// Resolve turns a job's file path into an absolute path, verifying the
	// file exists and is a regular file.
	Resolve(path string) (string, error)
}
