package filesystem

import (
	"io"
	"os"
	"time"

	"github.com/metafates/gache"
)

// gacheFs routes gache file access through API so caches follow SetMemMapFs in tests.
type gacheFs struct{}

func (gacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (gacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}

// Cache returns a file backed cache at path whose value expires after lifetime.
// A zero lifetime never expires.
func Cache[T any](path string, lifetime time.Duration) *gache.Cache[T] {
	return gache.New[T](&gache.Options{
		Path:       path,
		Lifetime:   lifetime,
		FileSystem: gacheFs{},
	})
}
