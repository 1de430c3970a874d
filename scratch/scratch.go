package scratch

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Key addresses one record of a store
type Key struct {
	Block, Level int
}

type segment struct {
	offset int64
	length int
}

/*
Store is a write once record store keyed by (block, level).

In memory mode records are held as gob encoded bytes. In spill mode every record is
gob encoded, zstd compressed and appended as a segment to the store's file; only the
segment index stays resident.
*/
type Store struct {
	name    string
	set     *Set
	mem     map[Key][]byte
	index   map[Key]segment
	file    *os.File
	written int64
}

/*
Set is the group of scratch stores of one run. The spill directory and every spill
file is created by Open and removed again by Close.
*/
type Set struct {
	dir    string
	spill  bool
	stores map[string]*Store
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// Open creates the named stores; with spill the files live in a fresh temporary directory below dir
func Open(dir string, spill bool, names ...string) (s *Set, err error) {
	s = &Set{spill: spill, stores: make(map[string]*Store, len(names))}
	if spill {
		if s.dir, err = os.MkdirTemp(dir, "mbgrid-scratch-"); err != nil {
			s = nil
			return
		}
		if s.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
			s.Close()
			s = nil
			return
		}
		if s.dec, err = zstd.NewReader(nil); err != nil {
			s.Close()
			s = nil
			return
		}
	}
	for _, name := range names {
		if _, ok := s.stores[name]; ok {
			s.Close()
			return nil, fmt.Errorf("scratch store %q opened twice", name)
		}
		st := &Store{name: name, set: s}
		if spill {
			st.index = make(map[Key]segment)
			if st.file, err = os.Create(filepath.Join(s.dir, name+".scr")); err != nil {
				s.Close()
				return nil, err
			}
		} else {
			st.mem = make(map[Key][]byte)
		}
		s.stores[name] = st
	}
	return
}

// Dir is the spill directory, empty in memory mode
func (s *Set) Dir() string { return s.dir }

func (s *Set) Spill() bool { return s.spill }

// Store returns the named store, nil if it was not opened
func (s *Set) Store(name string) *Store { return s.stores[name] }

// Close releases every store and removes the spill directory
func (s *Set) Close() (err error) {
	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := s.stores[name]
		if st.file != nil {
			if cErr := st.file.Close(); cErr != nil && err == nil {
				err = cErr
			}
			st.file = nil
		}
		st.mem, st.index = nil, nil
	}
	if s.enc != nil {
		s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	if s.dir != "" {
		if rErr := os.RemoveAll(s.dir); rErr != nil && err == nil {
			err = rErr
		}
	}
	return
}

func (st *Store) Name() string { return st.name }

// Put encodes v as the record of (block, level); every key is written once
func (st *Store) Put(block, level int, v interface{}) (err error) {
	key := Key{Block: block, Level: level}
	if st.Has(block, level) {
		return fmt.Errorf("scratch store %s: block %d level %d written twice", st.name, block, level)
	}
	var buf bytes.Buffer
	if err = gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("scratch store %s: encoding block %d level %d: %w", st.name, block, level, err)
	}
	if st.mem != nil {
		st.mem[key] = buf.Bytes()
		return
	}
	if st.file == nil {
		return fmt.Errorf("scratch store %s is closed", st.name)
	}
	data := st.set.enc.EncodeAll(buf.Bytes(), nil)
	var n int
	if n, err = st.file.WriteAt(data, st.written); err != nil {
		return fmt.Errorf("scratch store %s: %w", st.name, err)
	}
	st.index[key] = segment{offset: st.written, length: n}
	st.written += int64(n)
	return
}

// Get decodes the record of (block, level) into v, which must be a pointer
func (st *Store) Get(block, level int, v interface{}) (err error) {
	var (
		key  = Key{Block: block, Level: level}
		data []byte
	)
	switch {
	case st.mem != nil:
		var ok bool
		if data, ok = st.mem[key]; !ok {
			return fmt.Errorf("scratch store %s: no record for block %d level %d", st.name, block, level)
		}
	case st.file != nil:
		seg, ok := st.index[key]
		if !ok {
			return fmt.Errorf("scratch store %s: no record for block %d level %d", st.name, block, level)
		}
		raw := make([]byte, seg.length)
		if _, err = st.file.ReadAt(raw, seg.offset); err != nil {
			return fmt.Errorf("scratch store %s: %w", st.name, err)
		}
		if data, err = st.set.dec.DecodeAll(raw, nil); err != nil {
			return fmt.Errorf("scratch store %s: decompressing block %d level %d: %w", st.name, block, level, err)
		}
	default:
		return fmt.Errorf("scratch store %s is closed", st.name)
	}
	if err = gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		err = fmt.Errorf("scratch store %s: decoding block %d level %d: %w", st.name, block, level, err)
	}
	return
}

func (st *Store) Has(block, level int) (ok bool) {
	key := Key{Block: block, Level: level}
	if st.mem != nil {
		_, ok = st.mem[key]
	} else {
		_, ok = st.index[key]
	}
	return
}

func (st *Store) Len() int {
	if st.mem != nil {
		return len(st.mem)
	}
	return len(st.index)
}

// Keys lists the stored keys ordered by block, then level
func (st *Store) Keys() (keys []Key) {
	if st.mem != nil {
		for k := range st.mem {
			keys = append(keys, k)
		}
	} else {
		for k := range st.index {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Block != keys[j].Block {
			return keys[i].Block < keys[j].Block
		}
		return keys[i].Level < keys[j].Level
	})
	return
}

// Bytes is the size of the stored data, compressed in spill mode
func (st *Store) Bytes() (n int64) {
	if st.mem == nil {
		return st.written
	}
	for _, b := range st.mem {
		n += int64(len(b))
	}
	return
}
