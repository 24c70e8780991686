package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/Sunlight4/subterranea/internal/logging"
	"github.com/Sunlight4/subterranea/internal/world"
)

const gridKeyPrefix = "grid:"

// GridStorage хранит снимки карт в BadgerDB
type GridStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewGridStorage открывает хранилище в <dataPath>/grid
func NewGridStorage(dataPath string) (*GridStorage, error) {
	dbPath := filepath.Join(dataPath, "grid")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &GridStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает хранилище
func (gs *GridStorage) Close() error {
	gs.mutex.Lock()
	defer gs.mutex.Unlock()

	if !gs.isReady {
		return nil
	}

	gs.isReady = false
	return gs.db.Close()
}

func gridKey(name string) []byte {
	return []byte(gridKeyPrefix + name)
}

// SaveGrid сохраняет снимок карты под именем name и возвращает ID снимка
func (gs *GridStorage) SaveGrid(name string, tm *world.TileManager) (string, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return "", fmt.Errorf("хранилище не готово")
	}

	snap := Capture(tm)
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	err = gs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gridKey(name), data)
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	logging.Info("Карта %q сохранена: %dx%d, снимок %s, %d байт", name, snap.Width, snap.Height, snap.ID, len(data))
	return snap.ID, nil
}

// LoadSnapshot читает снимок без применения к карте
func (gs *GridStorage) LoadSnapshot(name string) (*Snapshot, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := gs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gridKey(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return DecodeSnapshot(data)
}

// LoadGrid загружает снимок name и применяет его к карте
func (gs *GridStorage) LoadGrid(name string, tm *world.TileManager) error {
	snap, err := gs.LoadSnapshot(name)
	if err != nil {
		return err
	}
	if err := snap.Apply(tm); err != nil {
		return err
	}
	logging.Info("Карта %q загружена: снимок %s от %s", name, snap.ID, snap.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// DeleteGrid удаляет снимок; отсутствие снимка не считается ошибкой
func (gs *GridStorage) DeleteGrid(name string) error {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return gs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gridKey(name))
	})
}

// ListGrids возвращает имена сохранённых карт в порядке ключей
func (gs *GridStorage) ListGrids() ([]string, error) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()

	if !gs.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var names []string
	err := gs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(gridKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), gridKeyPrefix))
		}
		return nil
	})
	return names, err
}
