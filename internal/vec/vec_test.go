package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Float_ProjectAndRotate(t *testing.T) {
	v := Vec2Float{X: 3, Y: 4}

	p := v.Project(Vec2Float{X: 2, Y: 0})
	assert.Equal(t, Vec2Float{X: 3, Y: 0}, p, "Проекция на ось X должна оставить только X")

	assert.Equal(t, Vec2Float{X: -4, Y: 3}, v.Rotate90())
	assert.Equal(t, Vec2Float{}, v.Project(Vec2Float{}), "Проекция на нулевую ось - нулевой вектор")
	assert.InDelta(t, 1.0, v.Normalized().Length(), 1e-9)
}

func TestVec2Float_ToVec2Floors(t *testing.T) {
	assert.Equal(t, Vec2{X: -1, Y: 2}, Vec2Float{X: -0.5, Y: 2.9}.ToVec2())
}

func TestRect_Overlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 2, Height: 2}
	b := Rect{X: 1.5, Y: 1, Width: 2, Height: 2}

	assert.True(t, a.Intersects(b))
	ox, oy := a.Overlap(b)
	assert.InDelta(t, 0.5, ox, 1e-9)
	assert.InDelta(t, 1.0, oy, 1e-9)

	c := Rect{X: 2, Y: 0, Width: 1, Height: 1}
	assert.False(t, a.Intersects(c), "Касание краями не считается пересечением")

	centered := NewRectCentered(Vec2Float{X: 5, Y: 5}, 2, 4)
	assert.Equal(t, 4.0, centered.Left())
	assert.Equal(t, 7.0, centered.Bottom())
	assert.True(t, math.Abs(centered.Center().X-5) < 1e-9)
}
