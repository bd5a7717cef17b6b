package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
	"gopkg.in/yaml.v3"
)

var headerSize = binary.Size(header{})

// Encode writes snap in the binary snapshot format
func Encode(w io.Writer, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	payload := snappy.Encode(nil, data)

	h := header{
		Magic:    Magic,
		Version:  Version,
		Length:   uint32(len(payload)),
		Checksum: crc32.ChecksumIEEE(payload),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write snapshot payload: %w", err)
	}
	return nil
}

// Decode parses a complete snapshot file image
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrSnapshotCorrupt, len(data))
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: invalid magic %x", ErrSnapshotCorrupt, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, h.Version)
	}

	payload := data[headerSize:]
	if uint32(len(payload)) != h.Length {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrSnapshotCorrupt, len(payload), h.Length)
	}
	if crc32.ChecksumIEEE(payload) != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrSnapshotCorrupt)
	}

	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrSnapshotCorrupt, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSnapshotCorrupt, err)
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save writes snap to path through a temporary file and a rename, so readers
// never observe a partial snapshot
func Save(path string, snap *Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, snap); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install snapshot: %w", err)
	}
	return nil
}

// Load maps the file at path read-only and decodes it
func Load(path string) (*Snapshot, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = reader.Close() }()

	buf := make([]byte, reader.Len())
	if _, err := reader.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(buf)
}

// WriteMetadata renders everything except the value table as YAML
func WriteMetadata(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot metadata: %w", err)
	}
	return enc.Close()
}
