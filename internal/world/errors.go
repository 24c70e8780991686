package world

import "errors"

var (
	// ErrCarveTooDeep - значение life вне допустимого диапазона для Expand
	ErrCarveTooDeep = errors.New("world: carve life exceeds limit")
	// ErrOutOfBounds - координата вне сетки
	ErrOutOfBounds = errors.New("world: coordinate out of bounds")
	// ErrInvalidSlope - недопустимый поворот скоса
	ErrInvalidSlope = errors.New("world: invalid slope rotation")
	// ErrSlopeOnEmpty - скос у пустой клетки
	ErrSlopeOnEmpty = errors.New("world: slope on empty cell")
)
