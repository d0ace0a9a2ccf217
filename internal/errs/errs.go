package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cache core. Callers match them with errors.Is;
// the constructors below attach the offending key/path via %w wrapping.
var (
	ErrInvalidManifestKey = errors.New("invalid manifest key")
	ErrMalformedManifest  = errors.New("malformed manifest")
	ErrNotFound           = errors.New("file not found in manifest")
	ErrNotAFile           = errors.New("path exists but is not a file")
	ErrNoManifestLoaded   = errors.New("no manifest loaded")
)

// InvalidManifestKey reports a manifest key that is not one of the valid
// manifest names currently known to the registry.
func InvalidManifestKey(key string) error {
	return fmt.Errorf("%w: %s is not one of the valid manifest names", ErrInvalidManifestKey, key)
}

// MalformedManifest reports manifest bytes that failed to parse.
func MalformedManifest(key string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedManifest, key, cause)
}

// NotFound reports a directory/category/name triple with no file record.
func NotFound(directory, category, name string) error {
	return fmt.Errorf("%w: %s/%s/%s", ErrNotFound, directory, category, name)
}

// NotAFile reports a local path that exists but is not a regular file.
// This is a corruption signal, never treated as a cache miss.
func NotAFile(path string) error {
	return fmt.Errorf("%w: %s", ErrNotAFile, path)
}

// NoManifestLoaded reports a path request made before any manifest was bound.
func NoManifestLoaded(op string) error {
	return fmt.Errorf("%w: call LoadManifest before %s", ErrNoManifestLoaded, op)
}
