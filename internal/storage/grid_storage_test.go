package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sunlight4/subterranea/internal/world"
)

func setupTestStorage(t *testing.T) *GridStorage {
	t.Helper()
	gs, err := NewGridStorage(t.TempDir())
	require.NoError(t, err, "Не удалось создать хранилище")
	t.Cleanup(func() { gs.Close() })
	return gs
}

func generatedGrid(t *testing.T, w, h int, seed int64) *world.TileManager {
	t.Helper()
	tm := world.NewTileManager(world.Options{Width: w, Height: h, Seed: seed})
	_, err := tm.Generate()
	require.NoError(t, err)
	tm.UpdateSlopes()
	return tm
}

func assertSameGrid(t *testing.T, want, got *world.TileManager) {
	t.Helper()
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			wt, gt := want.GetAt(x, y), got.GetAt(x, y)
			require.Equal(t, wt.Filled, gt.Filled, "Заливка %d:%d", x, y)
			require.Equal(t, wt.Sloped, gt.Sloped, "Скос %d:%d", x, y)
			if wt.Sloped {
				require.Equal(t, wt.SlopeRotation, gt.SlopeRotation, "Поворот %d:%d", x, y)
			}
		}
	}
}

func TestSaveAndLoadGrid(t *testing.T) {
	gs := setupTestStorage(t)
	src := generatedGrid(t, 37, 23, 11)
	require.Greater(t, src.SlopedCount(), 0)

	id, err := gs.SaveGrid("cave", src)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	dst := world.NewTileManager(world.Options{Width: 37, Height: 23})
	require.NoError(t, gs.LoadGrid("cave", dst))

	assertSameGrid(t, src, dst)
	assert.Equal(t, int64(11), dst.Seed())
}

func TestLoadGrid_NotFound(t *testing.T) {
	gs := setupTestStorage(t)
	tm := world.NewTileManager(world.Options{Width: 4, Height: 4})

	err := gs.LoadGrid("missing", tm)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestLoadGrid_SizeMismatch(t *testing.T) {
	gs := setupTestStorage(t)
	_, err := gs.SaveGrid("small", generatedGrid(t, 10, 10, 1))
	require.NoError(t, err)

	tm := world.NewTileManager(world.Options{Width: 12, Height: 10})
	tm.SetAt(3, 3, true)
	err = gs.LoadGrid("small", tm)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.True(t, tm.IsFilled(3, 3), "Карта не изменена при ошибке")
}

func TestListAndDeleteGrids(t *testing.T) {
	gs := setupTestStorage(t)
	tm := world.NewTileManager(world.Options{Width: 3, Height: 3})

	for _, name := range []string{"b", "a", "c"} {
		_, err := gs.SaveGrid(name, tm)
		require.NoError(t, err)
	}
	names, err := gs.ListGrids()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.NoError(t, gs.DeleteGrid("b"))
	names, err = gs.ListGrids()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestClosedStorage(t *testing.T) {
	gs, err := NewGridStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, gs.Close())
	require.NoError(t, gs.Close(), "Повторное закрытие безопасно")

	_, err = gs.SaveGrid("x", world.NewTileManager(world.Options{Width: 2, Height: 2}))
	assert.Error(t, err)
}

func TestSnapshot_Layout(t *testing.T) {
	tm := world.NewTileManager(world.Options{Width: 3, Height: 3})
	tm.SetAt(1, 0, true) // индекс 1
	tm.SetAt(0, 1, true) // индекс 3
	require.NoError(t, tm.RestoreSlope(0, 1, world.Slope270))

	s := Capture(tm)
	require.Len(t, s.Fill, 2)
	assert.Equal(t, byte(0b0000_1010), s.Fill[0])
	assert.Equal(t, byte(0), s.Fill[1])
	assert.Equal(t, byte(4), s.Slopes[3])
	assert.Equal(t, byte(0), s.Slopes[1])
}

func TestEncodeDecodeSnapshot(t *testing.T) {
	src := generatedGrid(t, 16, 16, 5)
	snap := Capture(src)

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Fill, got.Fill)
	assert.Equal(t, snap.Slopes, got.Slopes)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	_, err := DecodeSnapshot([]byte("не zstd"))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	bad := &Snapshot{Width: 4, Height: 4, Fill: make([]byte, 1)}
	data, err := EncodeSnapshot(bad)
	require.NoError(t, err)
	_, err = DecodeSnapshot(data)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	bad = &Snapshot{Width: 1, Height: 1, Fill: []byte{1}, Slopes: []byte{9}}
	assert.ErrorIs(t, bad.Validate(), ErrCorruptSnapshot)

	// Скос у пустой клетки не загружается
	bad = &Snapshot{Width: 2, Height: 1, Fill: []byte{0b01}, Slopes: []byte{0, 1}}
	assert.ErrorIs(t, bad.Validate(), ErrCorruptSnapshot)

	tm := world.NewTileManager(world.Options{Width: 2, Height: 1})
	assert.ErrorIs(t, bad.Apply(tm), ErrCorruptSnapshot)
	assert.Equal(t, 0, tm.SlopedCount())
}
