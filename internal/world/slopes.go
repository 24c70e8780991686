package world

import "fmt"

// Region - прямоугольная область клеток [X, X+W) x [Y, Y+H)
type Region struct {
	X, Y int
	W, H int
}

// slopeFor определяет поворот скоса по заполненности соседей.
// Скос есть только у "выпуклого угла": ровно один горизонтальный и ровно
// один вертикальный сосед заполнены.
func slopeFor(right, left, down, up bool) (SlopeRotation, bool) {
	switch {
	case right && !left && down && !up:
		return Slope0, true
	case right && !left && !down && up:
		return Slope270, true
	case !right && left && down && !up:
		return Slope90, true
	case !right && left && !down && up:
		return Slope180, true
	}
	return 0, false
}

// UpdateTile классифицирует скос клетки по её 4 соседям.
// Пустые клетки не трогаются. Если шаблон не найден, поведение зависит
// от SlopeMode: SlopeReset снимает скос, SlopeKeepStale оставляет прежний.
func (tm *TileManager) UpdateTile(x, y int) {
	if !tm.IsFilled(x, y) {
		return
	}
	tile := tm.GetAt(x, y)

	rot, ok := slopeFor(
		tm.IsFilled(x+1, y),
		tm.IsFilled(x-1, y),
		tm.IsFilled(x, y+1),
		tm.IsFilled(x, y-1),
	)
	if ok {
		tile.Sloped = true
		tile.SlopeRotation = rot
		return
	}
	if tm.slopeMode == SlopeReset {
		tile.Sloped = false
		tile.SlopeRotation = Slope0
	}
}

// UpdateSlopesIn классифицирует все клетки области
func (tm *TileManager) UpdateSlopesIn(r Region) {
	for x := r.X; x < r.X+r.W; x++ {
		for y := r.Y; y < r.Y+r.H; y++ {
			tm.UpdateTile(x, y)
		}
	}
}

// UpdateSlopes классифицирует внутреннюю часть карты без крайних строк и столбцов
func (tm *TileManager) UpdateSlopes() {
	tm.UpdateSlopesIn(Region{X: 1, Y: 1, W: tm.width - 2, H: tm.height - 2})
}

// SlopedCount возвращает число клеток со скосом
func (tm *TileManager) SlopedCount() int {
	n := 0
	for i := range tm.tiles {
		if tm.tiles[i].Sloped {
			n++
		}
	}
	return n
}

// RestoreSlope выставляет скос напрямую (загрузка сохранённой карты).
// Скос допустим только у заполненной клетки.
func (tm *TileManager) RestoreSlope(x, y int, rot SlopeRotation) error {
	if tm.IsOutside(x, y) {
		return fmt.Errorf("%w: %d:%d", ErrOutOfBounds, x, y)
	}
	if !rot.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSlope, rot)
	}
	if !tm.IsFilled(x, y) {
		return fmt.Errorf("%w: %d:%d", ErrSlopeOnEmpty, x, y)
	}
	tile := tm.GetAt(x, y)
	tile.Sloped = true
	tile.SlopeRotation = rot
	return nil
}
