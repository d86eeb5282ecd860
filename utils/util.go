// Package utils provides bit-, byte- and file-manipulation helpers
// shared across avltree-go packages.
package utils

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// GetNthBit finds the bit in the byte array bs
// at offset offset, and determines whether it is 1 or 0.
// It returns true if the nth bit is 1, false otherwise,
// counting from MSB to LSB order.
func GetNthBit(bs []byte, offset int) bool {
	arrayOffset := offset / 8
	bitOfByte := offset % 8

	masked := int(bs[arrayOffset] & (1 << uint(7-bitOfByte)))
	return masked != 0
}

// SetNthBit sets the bit in the byte array bs
// at offset offset to 1, counting from MSB to LSB order.
func SetNthBit(bs []byte, offset int) {
	arrayOffset := offset / 8
	bitOfByte := offset % 8

	bs[arrayOffset] |= 1 << uint(7-bitOfByte)
}

// LongToBytes converts an int64 variable to a byte array
// in little endian format.
func LongToBytes(num int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(num))
	return buf
}

// ULongToBytes converts an uint64 variable to a byte array
// in little endian format.
func ULongToBytes(num uint64) []byte {
	return LongToBytes(int64(num))
}

// ULongFromBytes reads an uint64 variable back from its
// little endian byte encoding.
func ULongFromBytes(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

// WriteFile writes buf to a file whose path is indicated by filename.
// It refuses to overwrite an existing file.
func WriteFile(filename string, buf []byte, perm os.FileMode) error {
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("Can't write file. File '%s' already exists",
			filename)
	}
	return os.WriteFile(filename, buf, perm)
}

// ResolvePath returns the absolute path of file.
// This will use other as a base path if file is just a file name.
func ResolvePath(file, other string) string {
	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(other), file)
	}
	return file
}
