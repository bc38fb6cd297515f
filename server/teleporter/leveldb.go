package teleporter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

const (
	recordPrefix   = "teleporter/"
	positionPrefix = "position/"
)

// LevelStore is a Store backed by a LevelDB database. Records are stored as
// little endian NBT under teleporter/<id>, with an index from
// position/<planet>/<x>/<y>/<z> to the record ID.
type LevelStore struct {
	db *leveldb.DB
	// mu serialises writes so that the position check of Put and the batch
	// written after it cannot interleave with another write.
	mu sync.Mutex
}

// OpenLevelStore opens or creates the database in dir.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.SnappyCompression})
	if err != nil {
		return nil, fmt.Errorf("open teleporter db: %w", err)
	}
	return &LevelStore{db: db}, nil
}

// diskTeleporter is the NBT representation of a Teleporter.
type diskTeleporter struct {
	ID          string  `nbt:"ID"`
	Name        string  `nbt:"Name"`
	Planet      string  `nbt:"Planet"`
	Position    []int32 `nbt:"Position"`
	CrossPlanet uint8   `nbt:"CrossPlanet"`
}

func recordKey(id uuid.UUID) []byte {
	return []byte(recordPrefix + id.String())
}

func positionKey(planet uuid.UUID, pos cube.Pos) []byte {
	return fmt.Appendf(nil, "%v%v/%d/%d/%d", positionPrefix, planet, pos[0], pos[1], pos[2])
}

func encode(t Teleporter) ([]byte, error) {
	d := diskTeleporter{
		ID:       t.ID.String(),
		Name:     t.Name,
		Planet:   t.Planet.String(),
		Position: []int32{int32(t.Position[0]), int32(t.Position[1]), int32(t.Position[2])},
	}
	if t.CrossPlanet {
		d.CrossPlanet = 1
	}
	return nbt.MarshalEncoding(d, nbt.LittleEndian)
}

func decode(b []byte) (Teleporter, error) {
	var d diskTeleporter
	if err := nbt.UnmarshalEncoding(b, &d, nbt.LittleEndian); err != nil {
		return Teleporter{}, fmt.Errorf("decode teleporter: %w", err)
	}
	if len(d.Position) != 3 {
		return Teleporter{}, fmt.Errorf("decode teleporter: position has %d components", len(d.Position))
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Teleporter{}, fmt.Errorf("decode teleporter id: %w", err)
	}
	planet, err := uuid.Parse(d.Planet)
	if err != nil {
		return Teleporter{}, fmt.Errorf("decode teleporter planet: %w", err)
	}
	return Teleporter{
		ID:          id,
		Name:        d.Name,
		Planet:      planet,
		Position:    cube.Pos{int(d.Position[0]), int(d.Position[1]), int(d.Position[2])},
		CrossPlanet: d.CrossPlanet != 0,
	}, nil
}

// Get ...
func (s *LevelStore) Get(id uuid.UUID) (Teleporter, error) {
	b, err := s.db.Get(recordKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Teleporter{}, ErrNotFound
	} else if err != nil {
		return Teleporter{}, fmt.Errorf("read teleporter: %w", err)
	}
	return decode(b)
}

// At ...
func (s *LevelStore) At(planet uuid.UUID, pos cube.Pos) (Teleporter, error) {
	b, err := s.db.Get(positionKey(planet, pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Teleporter{}, ErrNotFound
	} else if err != nil {
		return Teleporter{}, fmt.Errorf("read position index: %w", err)
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return Teleporter{}, fmt.Errorf("decode position index: %w", err)
	}
	return s.Get(id)
}

// Put ...
func (s *LevelStore) Put(t Teleporter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.At(t.Planet, t.Position)
	switch {
	case err == nil && existing.ID != t.ID:
		return ErrOccupied
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}
	b, err := encode(t)
	if err != nil {
		return fmt.Errorf("encode teleporter: %w", err)
	}
	batch := new(leveldb.Batch)
	old, err := s.Get(t.ID)
	switch {
	case err == nil:
		batch.Delete(positionKey(old.Planet, old.Position))
	case !errors.Is(err, ErrNotFound):
		return err
	}
	batch.Put(recordKey(t.ID), b)
	batch.Put(positionKey(t.Planet, t.Position), t.ID[:])
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("write teleporter: %w", err)
	}
	return nil
}

// Delete ...
func (s *LevelStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Get(id)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Delete(recordKey(id))
	batch.Delete(positionKey(t.Planet, t.Position))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("delete teleporter: %w", err)
	}
	return nil
}

// All ...
func (s *LevelStore) All() ([]Teleporter, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte(recordPrefix)), nil)
	defer it.Release()

	var all []Teleporter
	for it.Next() {
		t, err := decode(it.Value())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", it.Key(), err)
		}
		all = append(all, t)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("iterate teleporters: %w", err)
	}
	return all, nil
}

// Close closes the underlying database.
func (s *LevelStore) Close() error {
	return s.db.Close()
}
