package regionbuf

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// FileMemory allocates store blocks as shared mappings of files, so another
// process can map the same bytes (for example a renderer uploading vertex
// data). Each block lives in its own file, named baseName.N.buf, which is
// removed when the block is freed.
//
// FileMemory is not safe for concurrent use, like the Store that uses it.
type FileMemory struct {
	baseName string
	next     int
	files    map[*byte]*mMapFile
}

type mMapFile struct {
	file     *os.File
	mMapData []byte
}

// NewFileMemory creates a FileMemory that puts its files at baseName.N.buf
func NewFileMemory(baseName string) *FileMemory {
	return &FileMemory{baseName: baseName, files: make(map[*byte]*mMapFile)}
}

// Path returns the name of the file backing block, or "" if block did not come
// from this FileMemory
func (m *FileMemory) Path(block []byte) string {
	if len(block) == 0 {
		return ""
	}
	if f, ok := m.files[&block[0]]; ok {
		return f.file.Name()
	}
	return ""
}

// Alloc creates a file of size bytes and maps it read-write
func (m *FileMemory) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	m.next++
	filename := m.baseName + "." + strconv.Itoa(m.next) + ".buf"
	mf, err := openMmapFile(filename, size)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrOutOfMemory, "mapping %s", filename), err)
	}
	m.files[&mf.mMapData[0]] = mf
	return mf.mMapData, nil
}

// Free unmaps block and removes its file
func (m *FileMemory) Free(block []byte) {
	if len(block) == 0 {
		return
	}
	mf, ok := m.files[&block[0]]
	if !ok {
		return
	}
	delete(m.files, &block[0])
	if err := mf.close(true); err != nil {
		Logger().Warn("regionbuf: releasing mapped file failed", "file", mf.file.Name(), "err", err)
	}
}

// openMmapFile creates filename with size bytes and maps all of it shared and
// read-write
func openMmapFile(filename string, size int) (*mMapFile, error) {
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(filename)
		return nil, errors.Wrapf(err, "sizing %s", filename)
	}

	mMapData, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		os.Remove(filename)
		return nil, errors.Wrapf(err, "failed to map file %s", filename)
	}
	return &mMapFile{file: f, mMapData: mMapData}, nil
}

// close unmaps the file and closes it, removing it too if remove is set
func (m *mMapFile) close(remove bool) error {
	var errs []error
	if m.mMapData != nil {
		if err := unix.Munmap(m.mMapData); err != nil {
			errs = append(errs, err)
		}
		m.mMapData = nil
	}
	if err := m.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if remove {
		if err := os.Remove(m.file.Name()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
