// Package passwdfile reads and writes Mosquitto password files.
//
// A password file holds one "username:digest" entry per line. Blank lines and lines
// starting with '#' are ignored when parsing and dropped when writing. Entry order is
// preserved so regenerated files diff cleanly.
package passwdfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hengadev/errsx"
	"github.com/juju/utils/v4"

	"github.com/hengadev/mqpasswd/internal/mqerr"
)

// MaxUsernameBytes is the longest username Mosquitto accepts.
const MaxUsernameBytes = 65535

const fileMode = 0o600

// Entry is a single credential line.
type Entry struct {
	Username string
	Digest   string
}

// File is an in-memory password file. It is not safe for concurrent mutation.
type File struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty File.
func New() *File {
	return &File{index: make(map[string]int)}
}

// Parse reads a password file. Every malformed line is reported; the returned error is an
// errsx.Map keyed by "line N".
func Parse(r io.Reader) (*File, error) {
	f := New()
	var errs errsx.Map

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxUsernameBytes+8*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		username, digest, ok := strings.Cut(line, ":")
		if !ok {
			errs.Set(fmt.Sprintf("line %d", lineNo), "missing ':' separator")
			continue
		}
		if _, exists := f.index[username]; exists {
			errs.Set(fmt.Sprintf("line %d", lineNo), fmt.Sprintf("duplicate entry for '%s'", username))
			continue
		}
		if err := f.Set(username, digest); err != nil {
			errs.Set(fmt.Sprintf("line %d", lineNo), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read password file: %w", err)
	}

	if !errs.IsEmpty() {
		return nil, errs.AsError()
	}
	return f, nil
}

// Load parses the file at path. A missing file yields an empty File.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("open password file: %w", err)
	}
	defer fh.Close()

	return Parse(fh)
}

// ValidateUsername checks that username can be stored in a password file.
func ValidateUsername(username string) error {
	if username == "" {
		return mqerr.NewInvalidUsernameError(username, "is empty")
	}
	if len(username) > MaxUsernameBytes {
		return mqerr.NewInvalidUsernameError(truncate(username, 32)+"...", fmt.Sprintf("exceeds %d bytes", MaxUsernameBytes))
	}
	if strings.Contains(username, ":") {
		return mqerr.NewInvalidUsernameError(username, "contains ':'")
	}
	if strings.IndexFunc(username, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return mqerr.NewInvalidUsernameError(username, "contains whitespace or control characters")
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Set adds username or replaces its digest in place.
func (f *File) Set(username, digest string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if digest == "" || strings.ContainsAny(digest, ":\r\n") {
		return mqerr.NewInvalidFormatError(mqerr.Parse, fmt.Sprintf("invalid digest for '%s'", username))
	}

	if i, ok := f.index[username]; ok {
		f.entries[i].Digest = digest
		return nil
	}
	f.index[username] = len(f.entries)
	f.entries = append(f.entries, Entry{Username: username, Digest: digest})
	return nil
}

// Delete removes username.
func (f *File) Delete(username string) error {
	i, ok := f.index[username]
	if !ok {
		return mqerr.NewUserNotFoundError(username)
	}

	f.entries = append(f.entries[:i], f.entries[i+1:]...)
	delete(f.index, username)
	for j := i; j < len(f.entries); j++ {
		f.index[f.entries[j].Username] = j
	}
	return nil
}

// Lookup returns the digest stored for username.
func (f *File) Lookup(username string) (string, bool) {
	i, ok := f.index[username]
	if !ok {
		return "", false
	}
	return f.entries[i].Digest, true
}

// Usernames returns the usernames in file order.
func (f *File) Usernames() []string {
	names := make([]string, len(f.entries))
	for i, e := range f.entries {
		names[i] = e.Username
	}
	return names
}

// Entries returns a copy of the entries in file order.
func (f *File) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

func (f *File) Len() int {
	return len(f.entries)
}

// Clone returns an independent copy of f.
func (f *File) Clone() *File {
	c := New()
	for _, e := range f.entries {
		c.index[e.Username] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// WriteTo writes the file in broker format.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range f.entries {
		n, err := fmt.Fprintf(w, "%s:%s\n", e.Username, e.Digest)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the file in broker format.
func (f *File) Bytes() []byte {
	var buf bytes.Buffer
	f.WriteTo(&buf)
	return buf.Bytes()
}

// Save atomically replaces the file at path. The file is written with mode 0600.
func (f *File) Save(path string) error {
	if err := utils.AtomicWriteFile(path, f.Bytes(), fileMode); err != nil {
		return fmt.Errorf("write password file %s: %w", path, err)
	}
	return nil
}
