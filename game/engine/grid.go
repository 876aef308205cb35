package engine

import "fmt"

// Grid is the tile map a battle is fought on: width, height, and a
// per-tile terrain classification. It is immutable for the duration of
// any movement query and may be shared across concurrent queries. The
// tile size is carried only for rendering collaborators; the movement
// search never reads it.
type Grid struct {
	width    int
	height   int
	tileSize int
	tiles    [][]Terrain // tiles[y][x]
}

// NewGrid builds a grid from a row-major terrain matrix. Every row must
// have the same length.
func NewGrid(tiles [][]Terrain, tileSize int) (*Grid, error) {
	if len(tiles) == 0 || len(tiles[0]) == 0 {
		return nil, fmt.Errorf("grid: terrain matrix must be non-empty")
	}
	width := len(tiles[0])
	for y, row := range tiles {
		if len(row) != width {
			return nil, fmt.Errorf("grid: row %d has %d tiles, expected %d", y, len(row), width)
		}
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return &Grid{
		width:    width,
		height:   len(tiles),
		tileSize: tileSize,
		tiles:    tiles,
	}, nil
}

// Width returns the grid width in tiles
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in tiles
func (g *Grid) Height() int { return g.height }

// TileSize returns the tile edge length in pixels, for rendering only
func (g *Grid) TileSize() int { return g.tileSize }

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// TerrainAt returns the terrain classification at p. The caller must
// ensure p is in bounds.
func (g *Grid) TerrainAt(p Position) Terrain {
	return g.tiles[p.Y][p.X]
}
