package maptile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// TileGridSize is the number of tiles along each side of a map.
const TileGridSize = 64

// ErrTileCoord is returned for a tile position outside the map grid.
var ErrTileCoord = errors.New("tile coordinate outside the 64x64 grid")

// TileCoord is a tile position in the map grid, as written in tile file
// names: <Map>_<X>_<Y>.adt.
type TileCoord struct {
	X, Y int
}

// Valid reports whether c lies inside the grid.
func (c TileCoord) Valid() bool {
	return c.X >= 0 && c.X < TileGridSize && c.Y >= 0 && c.Y < TileGridSize
}

func (c TileCoord) index() int {
	return c.Y*TileGridSize + c.X
}

// ParseTileName splits a tile file name of the form <Map>_<X>_<Y>.<ext>
// into the map name and tile position. Directories and extension are ignored.
func ParseTileName(path string) (string, TileCoord, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	toks := strings.Split(base, "_")
	if len(toks) < 3 {
		return "", TileCoord{}, false
	}
	x, ok := parseGridIndex(toks[len(toks)-2])
	if !ok {
		return "", TileCoord{}, false
	}
	y, ok := parseGridIndex(toks[len(toks)-1])
	if !ok {
		return "", TileCoord{}, false
	}
	name := strings.Join(toks[:len(toks)-2], "_")
	if name == "" {
		return "", TileCoord{}, false
	}
	return name, TileCoord{X: x, Y: y}, true
}

func parseGridIndex(s string) (int, bool) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v >= TileGridSize {
		return 0, false
	}
	return v, true
}

// Storage records which tiles of one map exist and optionally holds the
// loaded tiles. It is safe for concurrent use.
type Storage struct {
	Name string

	mu    sync.RWMutex
	has   [TileGridSize * TileGridSize]bool
	tiles map[TileCoord]*Tile
}

// NewStorage returns an empty storage for the named map.
func NewStorage(name string) *Storage {
	return &Storage{Name: name, tiles: make(map[TileCoord]*Tile)}
}

// Add marks the tile at c as present. t may be nil when only presence is
// tracked.
func (s *Storage) Add(c TileCoord, t *Tile) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d,%d", ErrTileCoord, c.X, c.Y)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.has[c.index()] = true
	if t != nil {
		s.tiles[c] = t
	}
	return nil
}

// Has reports whether the tile at c is present.
func (s *Storage) Has(c TileCoord) bool {
	if !c.Valid() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.has[c.index()]
}

// Tile returns the loaded tile at c, or nil.
func (s *Storage) Tile(c TileCoord) *Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiles[c]
}

// Count returns the number of present tiles.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ok := range s.has {
		if ok {
			n++
		}
	}
	return n
}

// Coords returns the present tiles in row order.
func (s *Storage) Coords() []TileCoord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TileCoord
	for i, ok := range s.has {
		if ok {
			out = append(out, TileCoord{X: i % TileGridSize, Y: i / TileGridSize})
		}
	}
	return out
}

// DebugDump writes the presence grid, one line per row of Y and one
// character per X: '1' for a present tile, '0' otherwise.
func (s *Storage) DebugDump(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bw := bufio.NewWriter(w)
	for y := 0; y < TileGridSize; y++ {
		for x := 0; x < TileGridSize; x++ {
			if s.has[y*TileGridSize+x] {
				bw.WriteByte('1')
			} else {
				bw.WriteByte('0')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
