// Package util holds small helpers shared by the CLI commands.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vidlink-cli/vidlink/filesystem"
	"golang.org/x/term"
)

var (
	unsafeRunes = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]+`)
	repeated    = regexp.MustCompile(`__+`)
	edges       = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename turns a provider name into something usable as a script filename.
func SanitizeFilename(name string) string {
	name = unsafeRunes.ReplaceAllString(name, "_")
	name = repeated.ReplaceAllString(name, "_")
	return edges.ReplaceAllString(name, "")
}

// Quantify prefixes the singular or plural noun with count.
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FileStem is the base name of path without its extension.
func FileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// TerminalSize reports the size of the terminal on stdout.
func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PrintErasable writes msg on the current line. The returned func blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Ignore drops the error of a deferred close.
func Ignore(f func() error) {
	_ = f()
}

// Delete removes path whether it is a file or a directory.
func Delete(path string) error {
	fs := filesystem.API()
	stat, err := fs.Stat(path)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
