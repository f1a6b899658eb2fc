package fsutil

// Permission constants shared by the filesystem helpers, the config writer
// and the downloader.
const (
	FileModeMask = 0o777
	DirModeMask  = 0o777

	FileModeDefault = 0o644 // regular files, e.g. the config file
	FileModeSecure  = 0o640 // downloaded archives before they're verified
	FileModeExec    = 0o755

	DirModeDefault  = 0o755
	DirModeSecure   = 0o750
	DirModePrivate  = 0o700
	DirModeReadOnly = 0o555

	Umask = 0o022
)
