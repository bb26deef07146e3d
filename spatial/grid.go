// Package spatial provides the uniform-cell broad-phase grid used by
// movement, collision and magnet queries. It is grounded directly on the
// teacher's spatial grid: preallocated per-cell slices addressed by
// entity slot index (not pointer), a reusable scratch buffer for query
// results, and an O(cells) Clear that never frees the underlying arrays.
package spatial

// Key is the packed integer cell coordinate: (cx << 16) | (cy & 0xFFFF).
type Key uint32

func cellKey(cx, cy int32) Key {
	return Key(uint32(cx)<<16 | uint32(cy)&0xFFFF)
}

// Grid is a uniform-cell spatial hash over a bounded world. Dynamic
// entities (players, bots, projectiles) and static entities (food) are
// kept in separate bucket maps so a food-only query never has to filter
// out moving entities.
type Grid struct {
	cellSize    float32
	invCellSize float32
	dynamic     map[Key][]uint32
	static      map[Key][]uint32
	scratch     []uint32
	dynamicKeys []Key // occupied dynamic cells, for targeted Clear
}

// NewGrid creates a grid with the given cell size. cellSize should equal
// the largest query radius in the simulation (the magnet radius, or the
// collision detection range, whichever is larger).
func NewGrid(cellSize float32) *Grid {
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		dynamic:     make(map[Key][]uint32, 256),
		static:      make(map[Key][]uint32, 256),
		scratch:     make([]uint32, 0, 64),
	}
}

func (g *Grid) keyFor(x, y float32) Key {
	cx := int32(x * g.invCellSize)
	cy := int32(y * g.invCellSize)
	return cellKey(cx, cy)
}

// Clear empties dynamic buckets without freeing them, ready for the next
// tick's rebuild. Static (food) buckets persist across ticks since food
// only moves on spawn/consumption, not every tick.
func (g *Grid) Clear() {
	for _, k := range g.dynamicKeys {
		if b, ok := g.dynamic[k]; ok {
			g.dynamic[k] = b[:0]
		}
	}
	g.dynamicKeys = g.dynamicKeys[:0]
}

// Insert adds a dynamic entity (the common case: players, bots,
// projectiles) at position (x, y). entityID is the slot index.
func (g *Grid) Insert(entityID uint32, x, y float32) {
	k := g.keyFor(x, y)
	bucket := g.dynamic[k]
	if len(bucket) == 0 {
		g.dynamicKeys = append(g.dynamicKeys, k)
	}
	g.dynamic[k] = append(bucket, entityID)
}

// InsertStatic adds a static entity (food) to its own persistent layer.
func (g *Grid) InsertStatic(entityID uint32, x, y float32) {
	k := g.keyFor(x, y)
	g.static[k] = append(g.static[k], entityID)
}

// RemoveStatic removes a single static entity occupying (x, y). Used
// when food is consumed. O(bucket size).
func (g *Grid) RemoveStatic(entityID uint32, x, y float32) {
	k := g.keyFor(x, y)
	bucket := g.static[k]
	for i, id := range bucket {
		if id == entityID {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			g.static[k] = bucket[:last]
			return
		}
	}
}

// GCStaticEmpty drops static buckets that are empty, reclaiming map
// entries for cells nothing has occupied in a while. Intended to be
// called on a slow timer, not every tick.
func (g *Grid) GCStaticEmpty() {
	for k, b := range g.static {
		if len(b) == 0 {
			delete(g.static, k)
		}
	}
}

// QueryRadius returns slot indices whose cell overlaps a square around
// (cx, cy) of the given radius, from both dynamic and (if includeStatic)
// static layers. The returned slice is a reused scratch buffer: it is
// invalidated by the grid's next QueryRadius call and must be consumed
// (distance-checked, narrow-phased) before then.
func (g *Grid) QueryRadius(cx, cy, radius float32, includeStatic bool) []uint32 {
	g.scratch = g.scratch[:0]

	minCX := int32((cx - radius) * g.invCellSize)
	maxCX := int32((cx + radius) * g.invCellSize)
	minCY := int32((cy - radius) * g.invCellSize)
	maxCY := int32((cy + radius) * g.invCellSize)

	for y := minCY; y <= maxCY; y++ {
		for x := minCX; x <= maxCX; x++ {
			k := cellKey(x, y)
			g.scratch = append(g.scratch, g.dynamic[k]...)
			if includeStatic {
				g.scratch = append(g.scratch, g.static[k]...)
			}
		}
	}
	return g.scratch
}

// Stats reports occupancy for monitoring/tuning the cell size.
type Stats struct {
	DynamicCells, StaticCells int
	DynamicEntities           int
	MaxInDynamicCell          int
}

// Stats computes grid occupancy statistics.
func (g *Grid) Stats() Stats {
	var s Stats
	s.DynamicCells = len(g.dynamic)
	s.StaticCells = len(g.static)
	for _, b := range g.dynamic {
		s.DynamicEntities += len(b)
		if len(b) > s.MaxInDynamicCell {
			s.MaxInDynamicCell = len(b)
		}
	}
	return s
}
