package archive

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidName reports a destination path that cannot be stored as an
// archive entry.
var ErrInvalidName = errors.New("invalid archive entry name")

// NormalizeName canonicalizes name the way a zip writer stores it so that
// lookups against existing entries compare like with like. The result uses
// forward slashes, is relative, and never escapes the archive root.
func NormalizeName(name string) (string, error) {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, `\`, "/")
	if len(name) >= 2 && name[1] == ':' && isDriveLetter(name[0]) {
		name = name[2:]
	}
	if name == "" {
		return "", ErrInvalidName
	}
	name = path.Clean(name)
	name = strings.TrimLeft(name, "/")
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, "../") {
		return "", ErrInvalidName
	}
	return name, nil
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
