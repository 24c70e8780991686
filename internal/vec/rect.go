package vec

// Rect - прямоугольник, выровненный по осям (AABB).
// Ось Y направлена вниз: Top < Bottom.
type Rect struct {
	X, Y          float64 // Левый верхний угол
	Width, Height float64
}

// NewRectCentered создаёт прямоугольник по центру и размерам
func NewRectCentered(center Vec2Float, width, height float64) Rect {
	return Rect{
		X:      center.X - width/2,
		Y:      center.Y - height/2,
		Width:  width,
		Height: height,
	}
}

func (r Rect) Left() float64 { return r.X }
func (r Rect) Right() float64 { return r.X + r.Width }
func (r Rect) Top() float64 { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center возвращает центр прямоугольника
func (r Rect) Center() Vec2Float {
	return Vec2Float{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate сдвигает прямоугольник на вектор
func (r Rect) Translate(d Vec2Float) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Intersects проверяет пересечение с другим прямоугольником (касание не считается)
func (r Rect) Intersects(other Rect) bool {
	return r.Left() < other.Right() && other.Left() < r.Right() &&
		r.Top() < other.Bottom() && other.Top() < r.Bottom()
}

// Overlap возвращает глубину перекрытия по осям X и Y.
// Для непересекающихся прямоугольников хотя бы одно значение <= 0.
func (r Rect) Overlap(other Rect) (float64, float64) {
	ox := minf(r.Right(), other.Right()) - maxf(r.Left(), other.Left())
	oy := minf(r.Bottom(), other.Bottom()) - maxf(r.Top(), other.Top())
	return ox, oy
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
