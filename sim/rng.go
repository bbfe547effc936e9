// Partitioned, deterministically-derived RNG streams so a seeded run is
// bit-reproducible regardless of station construction order.
// Grounded on the teacher's sim/cluster/rng.go PartitionedRNG.

package sim

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// PartitionedRNG hands out an independent *rand.Rand per named subsystem,
// each deterministically derived from a single master seed. Two
// PartitionedRNGs built from the same seed and queried for the same
// subsystem names, in any order, produce identical streams.
type PartitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG rooted at masterSeed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		streams:    make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the *rand.Rand for name, creating it on first use.
// Repeated calls with the same name return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.streams[name] = r
	return r
}

// ForStation returns the RNG stream dedicated to the station at edge index e.
func (p *PartitionedRNG) ForStation(edgeIndex int) *rand.Rand {
	return p.ForSubsystem(subsystemStationName(edgeIndex))
}

// ForRouter returns the RNG stream dedicated to routing decisions.
func (p *PartitionedRNG) ForRouter() *rand.Rand {
	return p.ForSubsystem(subsystemRouter)
}

// deriveSeed XORs the master seed with an FNV-1a hash of the subsystem name,
// so derivation is order-independent: the seed for "station_7" does not
// depend on whether "router" was requested first.
func (p *PartitionedRNG) deriveSeed(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return p.masterSeed ^ int64(h.Sum64())
}

const subsystemRouter = "router"

func subsystemStationName(edgeIndex int) string {
	return "station_" + strconv.Itoa(edgeIndex)
}
