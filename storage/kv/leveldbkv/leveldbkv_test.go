package leveldbkv

import (
	"bytes"
	"testing"
)

func TestPutGetDelete(t *testing.T) {
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	key := []byte("key")
	value := []byte("value")
	if err := db.Put(key, value); err != nil {
		t.Fatal(err)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("got %q, want %q", got, value)
	}

	if err := db.Delete(key); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Get(key); err != db.ErrNotFound() {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestBatchWrite(t *testing.T) {
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.Put([]byte("gone"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	wb := db.NewBatch()
	wb.Put([]byte("a"), []byte("1"))
	wb.Put([]byte("b"), []byte("2"))
	wb.Delete([]byte("gone"))
	if err := db.Write(wb); err != nil {
		t.Fatal(err)
	}

	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := db.Get([]byte(k))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("Get(%q) = %q, want %q", k, got, want)
		}
	}
	if _, err := db.Get([]byte("gone")); err != db.ErrNotFound() {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
