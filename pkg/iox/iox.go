package iox

import (
	"io"
	"os"
)

func WriteStreamToFile(dstFilename string, src io.Reader) error {
	dstFile, err := os.Create(dstFilename)
	if err != nil {
		return err
	}
	defer dstFile.Close()
	_, err = io.Copy(dstFile, src)
	if err != nil {
		os.Remove(dstFilename)
		return err
	}
	return nil
}

// CopyFile copies src to dst, replacing dst if it exists.
// A partially written dst is removed on failure.
func CopyFile(srcFilename, dstFilename string) error {
	srcFile, err := os.Open(srcFilename)
	if err != nil {
		return err
	}
	defer srcFile.Close()
	return WriteStreamToFile(dstFilename, srcFile)
}
