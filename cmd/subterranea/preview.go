package main

import (
	"strings"

	"github.com/Sunlight4/subterranea/internal/physics"
	"github.com/Sunlight4/subterranea/internal/world"
)

// slopeGlyphs - символ скоса по повороту
var slopeGlyphs = map[world.SlopeRotation]byte{
	world.Slope0:   '/',
	world.Slope90:  '\\',
	world.Slope180: '/',
	world.Slope270: '\\',
}

// RenderASCII рисует область карты: '#' - заполнено, '/' и '\' - скосы,
// 'o' - тела, '.' - пусто
func RenderASCII(tm *world.TileManager, r world.Region, boxes []*physics.Box) string {
	if r.W <= 0 || r.H <= 0 {
		return ""
	}
	rows := make([][]byte, r.H)
	for dy := range rows {
		row := make([]byte, r.W)
		for dx := range row {
			tile := tm.GetAt(r.X+dx, r.Y+dy)
			switch {
			case tile.Sloped:
				row[dx] = slopeGlyphs[tile.SlopeRotation]
			case tile.Filled:
				row[dx] = '#'
			default:
				row[dx] = '.'
			}
		}
		rows[dy] = row
	}

	for _, b := range boxes {
		c := b.Bounds().Center().ToVec2()
		dx, dy := c.X-r.X, c.Y-r.Y
		if dx >= 0 && dy >= 0 && dx < r.W && dy < r.H {
			rows[dy][dx] = 'o'
		}
	}

	var sb strings.Builder
	sb.Grow((r.W + 1) * r.H)
	for _, row := range rows {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
