package media

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Locators starting with one of these name a file under the data root.
// "data/" and "/data/" are relative to the root; "file://" carries an
// absolute path that must still land inside it.
var localPrefixes = []string{"data/", "/data/", "file://"}

// Locators starting with one of these are served by external storage and
// are accepted without being opened.
var remotePrefixes = []string{"http://", "https://", "s3://", "gs://"}

type Kind int

const (
	Local Kind = iota + 1
	Remote
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return "invalid"
	}
}

// A Locator is a classified storage reference. Path is set for local
// locators and holds the resolved absolute file path.
type Locator struct {
	Kind Kind
	Raw  string
	Path string
}

// ErrInvalidLocator is wrapped by every rejection from ClassifyLocator and
// CheckReference.
var ErrInvalidLocator = errors.New("invalid storage locator")

type LocatorError struct {
	Locator string
	Reason  string
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("invalid storage locator '%s': %s", e.Locator, e.Reason)
}

func (e *LocatorError) Unwrap() error { return ErrInvalidLocator }

func invalid(locator, reason string) error {
	return &LocatorError{Locator: locator, Reason: reason}
}

// ClassifyLocator decides whether text names a local file or a remote
// object. Local locators must resolve, after cleaning and following
// symlinks, to a regular file strictly inside root.
func ClassifyLocator(root, text string) (Locator, error) {
	if isRemote(text) {
		if err := checkRemote(text); err != nil {
			return Locator{}, err
		}
		return Locator{Kind: Remote, Raw: text}, nil
	}

	candidate, err := localPath(root, text)
	if err != nil {
		return Locator{}, err
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return Locator{}, fmt.Errorf("error resolving data root '%s': %w", root, err)
	}
	if !within(root, candidate) && !within(realRoot, candidate) {
		return Locator{}, invalid(text, "outside of the data root")
	}
	resolved, err := filepath.EvalSymlinks(candidate)
	if errors.Is(err, os.ErrNotExist) {
		return Locator{}, invalid(text, "no such file")
	} else if err != nil {
		return Locator{}, invalid(text, err.Error())
	}
	if !within(realRoot, resolved) {
		return Locator{}, invalid(text, "outside of the data root")
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Locator{}, invalid(text, err.Error())
	}
	if !info.Mode().IsRegular() {
		return Locator{}, invalid(text, "not a regular file")
	}

	return Locator{Kind: Local, Raw: text, Path: resolved}, nil
}

// CheckReference accepts the same locator forms as ClassifyLocator but
// does not require a local file to exist. It is used for image URLs.
func CheckReference(root, text string) error {
	if isRemote(text) {
		return checkRemote(text)
	}
	candidate, err := localPath(root, text)
	if err != nil {
		return err
	}
	if !within(root, candidate) {
		return invalid(text, "outside of the data root")
	}
	return nil
}

func isRemote(text string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

func checkRemote(text string) error {
	u, err := url.Parse(text)
	if err != nil {
		return invalid(text, err.Error())
	}
	if u.Host == "" {
		return invalid(text, "missing host")
	}
	return nil
}

// localPath maps a local locator to a cleaned absolute path. The result
// has not been checked against the root.
func localPath(root, text string) (string, error) {
	switch {
	case strings.HasPrefix(text, "data/"):
		return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(text, "data/"))), nil
	case strings.HasPrefix(text, "/data/"):
		return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(text, "/data/"))), nil
	case strings.HasPrefix(text, "file://"):
		u, err := url.Parse(text)
		if err != nil {
			return "", invalid(text, err.Error())
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", invalid(text, "file locators must not name a host")
		}
		if !filepath.IsAbs(u.Path) {
			return "", invalid(text, "file locators must carry an absolute path")
		}
		return filepath.Clean(u.Path), nil
	default:
		return "", invalid(text, fmt.Sprintf("must start with one of %s or %s",
			strings.Join(localPrefixes, ", "), strings.Join(remotePrefixes, ", ")))
	}
}

// within reports whether path is strictly below dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
