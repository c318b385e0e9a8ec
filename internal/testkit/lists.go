package testkit

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"xlmhg/domain/ranked"
)

// Reference values for the example list of the XL-mHG paper: N=20 with ones
// at positions 0, 2, 3, 5 and 18.
const (
	PaperStat      = 0.01393188854489164
	PaperCutoff    = 6
	PaperPValue    = 0.0244453044375645
	PaperPValueX4  = 0.01876934984520124
	PaperPValueL6  = 0.019801341589267284
	PaperO1Bound   = 0.0696594427244582
	PaperONBound   = 0.04179566563467492
	PaperN, PaperK = 20, 5
)

// PaperIndices returns the positions of the ones in the paper example.
func PaperIndices() []uint16 {
	return []uint16{0, 2, 3, 5, 18}
}

// PaperVector returns the paper example as a 0/1 vector.
func PaperVector() []uint8 {
	v := make([]uint8, PaperN)
	for _, idx := range PaperIndices() {
		v[idx] = 1
	}
	return v
}

// PaperList returns the paper example as a ranked list.
func PaperList() *ranked.List {
	return &ranked.List{N: PaperN, Indices: PaperIndices()}
}

// TopHeavy returns a list of length N whose first K elements are ones.
func TopHeavy(N, K int) *ranked.List {
	indices := make([]uint16, K)
	for i := range indices {
		indices[i] = uint16(i)
	}
	return &ranked.List{N: N, Indices: indices}
}

// AllLists enumerates every list of length N with K ones, in lexicographic
// order of their index sets.
func AllLists(N, K int) []*ranked.List {
	combs := combin.Combinations(N, K)
	lists := make([]*ranked.List, len(combs))
	for i, c := range combs {
		indices := make([]uint16, K)
		for j, idx := range c {
			indices[j] = uint16(idx)
		}
		lists[i] = &ranked.List{N: N, Indices: indices}
	}
	return lists
}

// ListGeneratorConfig configures the random list generator.
type ListGeneratorConfig struct {
	N    int   `json:"n"`
	K    int   `json:"k"`
	Seed int64 `json:"seed"`
}

// ListGenerator draws ranked lists uniformly among those with K ones.
type ListGenerator struct {
	config ListGeneratorConfig
	rng    *rand.Rand
}

// NewListGenerator creates a seeded generator.
func NewListGenerator(config ListGeneratorConfig) *ListGenerator {
	return &ListGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Next draws one list.
func (g *ListGenerator) Next() *ranked.List {
	perm := g.rng.Perm(g.config.N)[:g.config.K]
	sort.Ints(perm)
	indices := make([]uint16, len(perm))
	for i, idx := range perm {
		indices[i] = uint16(idx)
	}
	return &ranked.List{N: g.config.N, Indices: indices}
}

// Batch draws n lists.
func (g *ListGenerator) Batch(n int) []*ranked.List {
	lists := make([]*ranked.List, n)
	for i := range lists {
		lists[i] = g.Next()
	}
	return lists
}
