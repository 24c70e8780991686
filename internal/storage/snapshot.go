package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Sunlight4/subterranea/internal/world"
)

var (
	ErrSnapshotNotFound = errors.New("снимок карты не найден")
	ErrSizeMismatch     = errors.New("размер снимка не совпадает с картой")
	ErrCorruptSnapshot  = errors.New("повреждённый снимок карты")
)

// Snapshot - сохранённое состояние заливки и скосов карты.
//
// Fill - битовая карта заливки, построчно, младший бит первым.
// Slopes - по байту на клетку: 0 без скоса, иначе 1 + поворот/90.
type Snapshot struct {
	ID        string    `msgpack:"id"`
	Width     int       `msgpack:"w"`
	Height    int       `msgpack:"h"`
	Seed      int64     `msgpack:"seed"`
	CreatedAt time.Time `msgpack:"created_at"`
	Fill      []byte    `msgpack:"fill"`
	Slopes    []byte    `msgpack:"slopes"`
}

// Capture снимает состояние карты
func Capture(tm *world.TileManager) *Snapshot {
	w, h := tm.Width(), tm.Height()
	s := &Snapshot{
		ID:        uuid.NewString(),
		Width:     w,
		Height:    h,
		Seed:      tm.Seed(),
		CreatedAt: time.Now().UTC(),
		Fill:      make([]byte, (w*h+7)/8),
		Slopes:    make([]byte, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			tile := tm.GetAt(x, y)
			if tile.Filled {
				s.Fill[i/8] |= 1 << (i % 8)
			}
			if tile.Sloped {
				s.Slopes[i] = byte(1 + tile.SlopeRotation/90)
			}
		}
	}
	return s
}

// Filled - заполнена ли клетка с индексом i
func (s *Snapshot) Filled(i int) bool {
	return s.Fill[i/8]&(1<<(i%8)) != 0
}

// Validate проверяет согласованность размеров и значений
func (s *Snapshot) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: размер %dx%d", ErrCorruptSnapshot, s.Width, s.Height)
	}
	cells := s.Width * s.Height
	if len(s.Fill) != (cells+7)/8 {
		return fmt.Errorf("%w: битовая карта %d байт, ожидалось %d", ErrCorruptSnapshot, len(s.Fill), (cells+7)/8)
	}
	if len(s.Slopes) != 0 && len(s.Slopes) != cells {
		return fmt.Errorf("%w: скосов %d, ожидалось %d", ErrCorruptSnapshot, len(s.Slopes), cells)
	}
	for i, v := range s.Slopes {
		if v > 4 {
			return fmt.Errorf("%w: клетка %d, код скоса %d", ErrCorruptSnapshot, i, v)
		}
		if v != 0 && !s.Filled(i) {
			return fmt.Errorf("%w: скос у пустой клетки %d", ErrCorruptSnapshot, i)
		}
	}
	return nil
}

// Apply переносит снимок на карту того же размера
func (s *Snapshot) Apply(tm *world.TileManager) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Width != tm.Width() || s.Height != tm.Height() {
		return fmt.Errorf("%w: снимок %dx%d, карта %dx%d",
			ErrSizeMismatch, s.Width, s.Height, tm.Width(), tm.Height())
	}

	tm.Reseed(s.Seed)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			i := y*s.Width + x
			tm.SetAt(x, y, s.Filled(i))
			if len(s.Slopes) == 0 || s.Slopes[i] == 0 {
				continue
			}
			rot := world.SlopeRotation(int(s.Slopes[i]-1) * 90)
			if err := tm.RestoreSlope(x, y, rot); err != nil {
				return fmt.Errorf("скос %d:%d: %w", x, y, err)
			}
		}
	}
	return nil
}

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return codecErr
}

// EncodeSnapshot сериализует снимок в msgpack и сжимает zstd
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("инициализация zstd: %w", err)
	}
	raw, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

// DecodeSnapshot - обратное к EncodeSnapshot
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("инициализация zstd: %w", err)
	}
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	var s Snapshot
	if err := msgpack.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
