package batch

import (
	"sort"
	"strings"
	"sync"

	"github.com/Faultbox/adtconv/pkg/maptile"
)

// Index tracks tile presence per map, keyed by the map name in tile file
// names. It is safe for concurrent use.
type Index struct {
	mu   sync.Mutex
	maps map[string]*maptile.Storage
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{maps: make(map[string]*maptile.Storage)}
}

// IndexFiles builds an index from tile file names.
func IndexFiles(files []string) *Index {
	idx := NewIndex()
	for _, f := range files {
		idx.Add(f, nil)
	}
	return idx
}

// Add records the tile named by path. It reports false when the name does
// not carry a map position.
func (x *Index) Add(path string, t *maptile.Tile) bool {
	name, coord, ok := maptile.ParseTileName(path)
	if !ok {
		return false
	}
	return x.storage(name).Add(coord, t) == nil
}

func (x *Index) storage(name string) *maptile.Storage {
	key := strings.ToLower(name)

	x.mu.Lock()
	defer x.mu.Unlock()
	s, ok := x.maps[key]
	if !ok {
		s = maptile.NewStorage(name)
		x.maps[key] = s
	}
	return s
}

// Maps returns the storage of every indexed map, sorted by name.
func (x *Index) Maps() []*maptile.Storage {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]*maptile.Storage, 0, len(x.maps))
	for _, s := range x.maps {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
