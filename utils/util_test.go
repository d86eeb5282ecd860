package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGetNthBit(t *testing.T) {
	bs := []byte{0x80, 0x01}
	if !GetNthBit(bs, 0) {
		t.Error("MSB of first byte should be set")
	}
	for i := 1; i < 15; i++ {
		if GetNthBit(bs, i) {
			t.Errorf("bit %d should be clear", i)
		}
	}
	if !GetNthBit(bs, 15) {
		t.Error("LSB of second byte should be set")
	}
}

func TestSetNthBit(t *testing.T) {
	for offset := 0; offset < 24; offset++ {
		bs := make([]byte, 3)
		SetNthBit(bs, offset)
		for i := 0; i < 24; i++ {
			if GetNthBit(bs, i) != (i == offset) {
				t.Fatalf("SetNthBit(%d): unexpected bit %d", offset, i)
			}
		}
	}
}

func TestULongToBytes(t *testing.T) {
	if got := ULongToBytes(0x0102030405060708); !bytes.Equal(got,
		[]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}) {
		t.Errorf("unexpected little endian encoding: %x", got)
	}
	for _, num := range []uint64{0, 1, 255, 1 << 40, ^uint64(0)} {
		if got := ULongFromBytes(ULongToBytes(num)); got != num {
			t.Errorf("round trip of %d returned %d", num, got)
		}
	}
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	if err := WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("second"), 0644); err == nil {
		t.Fatal("overwriting an existing file should fail")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Errorf("file content changed to %q", got)
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/abs/key.pub", "/etc/conf/config.toml"); got != "/abs/key.pub" {
		t.Errorf("absolute path rewritten to %q", got)
	}
	if got := ResolvePath("key.pub", "/etc/conf/config.toml"); got != "/etc/conf/key.pub" {
		t.Errorf("relative path resolved to %q", got)
	}
}
