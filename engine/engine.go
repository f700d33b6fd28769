// Package engine implements the LSH hashing machinery behind an Index:
// hash-family evaluation, multi-probe sequence generation, bucket storage
// and distance ranking. The query layer in the root package talks to it
// exclusively through DefaultParameters, Construct and the Table interface.
package engine

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/probelab/lshnn/internal/hashtable"
)

// DistanceFunction identifies the metric used for ranking candidates.
type DistanceFunction int

const (
	// DistanceUnknown is the sentinel for an unrecognized metric label.
	DistanceUnknown DistanceFunction = iota
	DistanceNegativeInnerProduct
	DistanceEuclideanSquared
)

// String returns a string representation of the DistanceFunction.
func (d DistanceFunction) String() string {
	switch d {
	case DistanceNegativeInnerProduct:
		return "NegativeInnerProduct"
	case DistanceEuclideanSquared:
		return "EuclideanSquared"
	default:
		return "Unknown"
	}
}

// LSHFamily identifies the hash-function family used to build tables.
type LSHFamily int

const (
	// FamilyUnknown is the sentinel for an unrecognized family label.
	FamilyUnknown LSHFamily = iota
	FamilyHyperplane
	FamilyCrossPolytope
)

// String returns a string representation of the LSHFamily.
func (f LSHFamily) String() string {
	switch f {
	case FamilyHyperplane:
		return "Hyperplane"
	case FamilyCrossPolytope:
		return "CrossPolytope"
	default:
		return "Unknown"
	}
}

// StorageHashTable identifies the bucket storage strategy for hash tables.
type StorageHashTable int

const (
	// StorageUnknown is the sentinel for an unrecognized storage label.
	StorageUnknown StorageHashTable = iota
	StorageFlatHashTable
	StorageBitPackedFlatHashTable
	StorageSTLHashTable
	StorageLinearProbingHashTable
)

// String returns a string representation of the StorageHashTable.
func (s StorageHashTable) String() string {
	switch s {
	case StorageFlatHashTable:
		return "FlatHashTable"
	case StorageBitPackedFlatHashTable:
		return "BitPackedFlatHashTable"
	case StorageSTLHashTable:
		return "STLHashTable"
	case StorageLinearProbingHashTable:
		return "LinearProbingHashTable"
	default:
		return "Unknown"
	}
}

// DefaultSeed is the construction seed used when the caller does not supply one.
const DefaultSeed uint64 = 409556018

// defaultHashTables is the default number of hash tables (l).
const defaultHashTables = 10

// Params describes how to construct an LSH table structure.
// A zero value is not usable; start from DefaultParameters.
type Params struct {
	// Dimension is the dimensionality of the indexed points.
	Dimension int

	// Distance is the metric used for candidate ranking.
	Distance DistanceFunction

	// Family is the LSH hash-function family.
	Family LSHFamily

	// HashFunctions is the number of hash functions per table (k).
	HashFunctions int

	// HashTables is the number of hash tables (l).
	HashTables int

	// Storage selects the bucket storage strategy.
	Storage StorageHashTable

	// Rotations is the number of pseudo-rotations per cross-polytope
	// hash function. Ignored by the hyperplane family.
	Rotations int

	// Seed drives all pseudo-random choices made during construction.
	Seed uint64

	// SetupThreads is the number of worker goroutines used while building
	// tables. Zero means one worker per available CPU.
	SetupThreads int

	// LastCPDimension is the rotated dimension of the last cross-polytope
	// hash function. Derived by ComputeNumberOfHashFunctions.
	LastCPDimension int

	// FeatureHashingDimension is the intermediate dimension used for
	// sparse inputs. Unset (-1) for dense point sets.
	FeatureHashingDimension int
}

// DefaultParameters computes a reasonable parameter set for a dataset of
// the given size and dimension. When autoTune is set, the number of hash
// functions is derived from the dataset size so that buckets stay small.
func DefaultParameters(points, dimension int, distance DistanceFunction, autoTune bool) Params {
	p := Params{
		Dimension:               dimension,
		Distance:                distance,
		Family:                  FamilyCrossPolytope,
		HashTables:              defaultHashTables,
		Storage:                 StorageBitPackedFlatHashTable,
		Rotations:               1,
		Seed:                    DefaultSeed,
		SetupThreads:            0,
		FeatureHashingDimension: -1,
	}
	if autoTune && points > 1 {
		bits := int(math.Round(math.Log2(float64(points))))
		if bits < 1 {
			bits = 1
		}
		ComputeNumberOfHashFunctions(bits, &p)
	} else {
		ComputeNumberOfHashFunctions(1, &p)
	}
	return p
}

// ComputeNumberOfHashFunctions sets HashFunctions (and, for the
// cross-polytope family, LastCPDimension) so that each table key carries
// approximately bits hash bits.
func ComputeNumberOfHashFunctions(bits int, p *Params) {
	if bits < 1 {
		bits = 1
	}
	switch p.Family {
	case FamilyHyperplane:
		p.HashFunctions = bits
	default:
		rotDim := rotationDimension(p.Dimension)
		bitsPerFunc := ilog2(2 * rotDim)
		full := bits / bitsPerFunc
		rem := bits % bitsPerFunc
		if rem == 0 {
			if full == 0 {
				full = 1
			}
			p.HashFunctions = full
			p.LastCPDimension = rotDim
		} else {
			// The last function hashes into a smaller cross-polytope
			// to hit the requested bit count exactly.
			p.HashFunctions = full + 1
			p.LastCPDimension = 1 << (rem - 1)
		}
	}
}

// rotationDimension rounds d up to the next power of two.
func rotationDimension(d int) int {
	r := 1
	for r < d {
		r <<= 1
	}
	return r
}

// ilog2 returns floor(log2(v)) for v >= 1.
func ilog2(v int) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// NoMaxCandidates disables the cap on candidates considered per query.
const NoMaxCandidates = -1

// Table is a constructed LSH search structure over a fixed point set.
//
// All point indices are 0-based. Query slices must have the table's
// dimension; the query layer validates that before calling in.
//
// Concurrent read-only queries are safe for a fixed probe and candidate-cap
// setting. SetNumProbes and SetMaxCandidates mutate shared state and must be
// serialized externally against in-flight queries.
type Table interface {
	// NearestNeighbor returns the index of the best-ranked candidate,
	// or -1 when the probing sequence yields no candidates.
	NearestNeighbor(q []float64) int32

	// KNearestNeighbors returns up to k candidate indices ordered by
	// increasing distance to q.
	KNearestNeighbors(q []float64, k int) []int32

	// NearNeighbors returns all candidates within radius of q in the
	// table's metric, deduplicated, order unspecified.
	NearNeighbors(q []float64, radius float64) []int32

	// CandidatesWithDuplicates returns the raw probing-sequence result.
	// A point colliding in several tables appears once per collision.
	CandidatesWithDuplicates(q []float64) []int32

	// UniqueCandidates returns the probing-sequence result deduplicated,
	// in first-seen order.
	UniqueCandidates(q []float64) []int32

	// SetNumProbes sets the total number of buckets probed per query
	// across all tables.
	SetNumProbes(n int)
	NumProbes() int

	// SetMaxCandidates caps the number of candidates fetched per query.
	// NoMaxCandidates removes the cap.
	SetMaxCandidates(n int)
	MaxCandidates() int
}

// Construct builds the LSH table structure for ps. This is the expensive,
// one-time operation; queries against the returned Table are cheap.
// The configuration is validated for internal consistency first.
//
// The returned Table retains ps for the rest of its lifetime; callers must
// not mutate the point set afterwards.
func Construct(ps *PointSet, p Params) (Table, error) {
	if err := validateParams(ps, p); err != nil {
		return nil, err
	}

	hashers := make([]hasher, p.HashTables)
	for t := range hashers {
		hashers[t] = newHasher(p, t)
	}

	kind := storageKind(p.Storage)
	stores := make([]hashtable.Store, p.HashTables)

	threads := p.SetupThreads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(threads)
	for t := range stores {
		g.Go(func() error {
			store := hashtable.New(kind, ps.Len())
			for j := 0; j < ps.Len(); j++ {
				store.Add(hashers[t].hashPoint(ps.Point(j)), int32(j))
			}
			store.Finalize()
			stores[t] = store
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &lshTable{
		ps:            ps,
		params:        p,
		hashers:       hashers,
		stores:        stores,
		dist:          newDistanceFunc(p.Distance),
		numProbes:     p.HashTables,
		maxCandidates: NoMaxCandidates,
	}, nil
}

func validateParams(ps *PointSet, p Params) error {
	if ps == nil || ps.Len() <= 0 {
		return &ErrInvalidParameters{Field: "points", Reason: "point set must not be empty"}
	}
	if p.Dimension <= 0 {
		return &ErrInvalidParameters{Field: "dimension", Reason: "must be positive"}
	}
	if ps.Dimension() != p.Dimension {
		return &ErrDimensionMismatch{Expected: p.Dimension, Actual: ps.Dimension()}
	}
	if p.Distance == DistanceUnknown {
		return &ErrInvalidParameters{Field: "distance", Reason: "distance function is unknown"}
	}
	if p.Family == FamilyUnknown {
		return &ErrInvalidParameters{Field: "family", Reason: "hash family is unknown"}
	}
	if p.Storage == StorageUnknown {
		return &ErrInvalidParameters{Field: "storage", Reason: "storage strategy is unknown"}
	}
	if p.HashFunctions < 1 {
		return &ErrInvalidParameters{Field: "hashFunctions", Reason: "must be positive"}
	}
	if p.HashTables < 1 {
		return &ErrInvalidParameters{Field: "hashTables", Reason: "must be positive"}
	}
	if p.Family == FamilyCrossPolytope {
		if p.Rotations < 1 {
			return &ErrInvalidParameters{Field: "rotations", Reason: "must be positive for cross-polytope hashing"}
		}
		if p.LastCPDimension < 1 || p.LastCPDimension > rotationDimension(p.Dimension) {
			return &ErrInvalidParameters{Field: "lastCPDimension", Reason: "out of range for the data dimension"}
		}
	}
	if keyBits(p) > 64 {
		return &ErrInvalidParameters{Field: "hashFunctions", Reason: "combined hash key exceeds 64 bits"}
	}
	return nil
}

// keyBits returns the number of bits a packed table key occupies.
func keyBits(p Params) int {
	switch p.Family {
	case FamilyHyperplane:
		return p.HashFunctions
	case FamilyCrossPolytope:
		rotDim := rotationDimension(p.Dimension)
		bits := (p.HashFunctions - 1) * ilog2(2*rotDim)
		last := p.LastCPDimension
		if last < 1 {
			last = rotDim
		}
		return bits + ilog2(2*last)
	default:
		return 0
	}
}

func newHasher(p Params, table int) hasher {
	switch p.Family {
	case FamilyCrossPolytope:
		return newCrossPolytopeHasher(p, table)
	default:
		return newHyperplaneHasher(p, table)
	}
}

func storageKind(s StorageHashTable) hashtable.Kind {
	switch s {
	case StorageFlatHashTable:
		return hashtable.Flat
	case StorageSTLHashTable:
		return hashtable.STL
	case StorageLinearProbingHashTable:
		return hashtable.LinearProbing
	default:
		return hashtable.BitPackedFlat
	}
}
