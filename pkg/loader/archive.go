package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/hornetvm/hornet/pkg/class"
)

// ArchiveLoader loads classes from a jar- or jmod-style zip archive,
// generalizing daimatz-gojvm's JmodClassLoader (pkg/vm/classloader.go)
// beyond the jmod-specific "classes/" prefix and 4-byte "JM\x01\x00"
// header strip.
type ArchiveLoader struct {
	Path       string
	EntryPrefix string // e.g. "classes/" for jmod archives, "" for plain jars
	HeaderSkip  int    // bytes to skip before the zip's own magic, e.g. 4 for jmod

	mu        sync.Mutex
	cache     map[string]*class.Class
	mapped    mmap.MMap
	zipReader *zip.Reader
}

// NewArchiveLoader builds a loader over path. Pass entryPrefix="classes/"
// and headerSkip=4 to read a JDK jmod file the way JmodClassLoader did;
// pass "" and 0 for an ordinary jar.
func NewArchiveLoader(path, entryPrefix string, headerSkip int) *ArchiveLoader {
	return &ArchiveLoader{
		Path:        path,
		EntryPrefix: entryPrefix,
		HeaderSkip:  headerSkip,
		cache:       make(map[string]*class.Class),
	}
}

func (l *ArchiveLoader) ensureOpen() error {
	if l.zipReader != nil {
		return nil
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return fmt.Errorf("archive loader: opening %s: %w", l.Path, err)
	}
	defer f.Close()

	mapped, err := mmapReadOnly(f)
	if err != nil {
		return fmt.Errorf("archive loader: mapping %s: %w", l.Path, err)
	}

	body := []byte(mapped)[l.HeaderSkip:]
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		mapped.Unmap()
		return fmt.Errorf("archive loader: opening zip in %s: %w", l.Path, err)
	}

	l.mapped = mapped
	l.zipReader = zr
	return nil
}

// Close releases the archive's memory mapping.
func (l *ArchiveLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mapped != nil {
		err := l.mapped.Unmap()
		l.mapped = nil
		l.zipReader = nil
		return err
	}
	return nil
}

// LoadClass implements class.Loader.
func (l *ArchiveLoader) LoadClass(name string) (*class.Class, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[name]; ok {
		return c, nil
	}
	if err := l.ensureOpen(); err != nil {
		return nil, err
	}

	target := l.EntryPrefix + name + ".class"
	for _, f := range l.zipReader.File {
		if f.Name != target {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive loader: opening %s: %w", target, err)
		}
		defer rc.Close()

		c, err := class.Decode(rc, l)
		if err != nil {
			return nil, fmt.Errorf("archive loader: decoding %s: %w", name, err)
		}
		l.cache[name] = c
		return c, nil
	}

	return nil, fmt.Errorf("archive loader: class %s not found in %s", name, l.Path)
}
