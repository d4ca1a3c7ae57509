package depot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// resolve maps a client identity and a logical reference to an absolute
// physical path. References are either a bare stored name or
// "owner/storedName". Lookup order:
//
//  1. root/clientID/reference as given (flat files and explicit owner paths)
//  2. for bare references, each immediate subdirectory of root/clientID
//
// The flat-first fallback keeps files stored before owner grouping existed
// resolving; it is confined to this function so a future single-scheme
// layout only changes the resolver. The subdirectory scan is linear: fine
// for tens of owners per client, not for thousands.
func (s *Storage) resolve(clientID, reference string) (string, error) {
	if err := validateSegment(clientID); err != nil {
		return "", err
	}
	owner, name, err := splitReference(reference)
	if err != nil {
		return "", err
	}

	clientRoot := filepath.Join(s.root, clientID)

	direct := filepath.Join(clientRoot, owner, name)
	if err := ensureWithin(clientRoot, direct); err != nil {
		return "", err
	}
	if isRegularFile(direct) {
		return direct, nil
	}

	if owner == "" {
		entries, err := os.ReadDir(clientRoot)
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrListFailed, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			candidate := filepath.Join(clientRoot, e.Name(), name)
			if isRegularFile(candidate) {
				return candidate, nil
			}
		}
	}

	return "", ErrNotFound
}

// splitReference splits a reference into an optional owner segment and a
// filename. At most one separator is allowed; deeper paths are rejected.
func splitReference(reference string) (owner, name string, err error) {
	if strings.ContainsRune(reference, '\\') {
		return "", "", ErrInvalidPath
	}
	parts := strings.Split(reference, "/")
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		owner, name = parts[0], parts[1]
		if err := validateSegment(owner); err != nil {
			return "", "", err
		}
	default:
		return "", "", ErrInvalidPath
	}
	if err := validateSegment(name); err != nil {
		return "", "", err
	}
	return owner, name, nil
}

// ValidateIdentity checks that a client or owner identity is usable as a
// single path segment. Callers that mint identities (key provisioning, for
// example) can reject bad ones before any file exists for them.
func ValidateIdentity(identity string) error {
	return validateSegment(identity)
}

// validateSegment checks that a string is usable as a single path segment.
func validateSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." {
		return ErrInvalidPath
	}
	if strings.ContainsAny(seg, `/\`) {
		return ErrInvalidPath
	}
	if strings.ContainsRune(seg, 0) {
		return ErrInvalidPath
	}
	return nil
}

// ensureWithin verifies that path stays inside root after normalization.
// Segment validation already blocks traversal; this is the final check
// before any filesystem access.
func ensureWithin(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrInvalidPath
	}
	if !strings.HasPrefix(abs, absRoot+string(os.PathSeparator)) {
		return ErrInvalidPath
	}
	return nil
}

// isRegularFile reports whether path exists and is a regular file.
func isRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
