package util

import (
	"fmt"
	"os"
	"syscall"
)

// FileInfo is a cheap change fingerprint for a file: modification time, size and inode.
type FileInfo struct {
	ModTime int64
	Size    int64
	Inode   uint64
}

// GetFileInfo retrieves the fingerprint for path. Supported on Linux and macOS.
func GetFileInfo(path string) (FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return FileInfo{}, fmt.Errorf("failed to get file system information: %s", path)
	}

	return FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   sysStat.Ino,
	}, nil
}
