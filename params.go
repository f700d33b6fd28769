package lshnn

import (
	"fmt"
	"strings"

	"github.com/probelab/lshnn/engine"
)

// Label tables mapping caller-facing strings to engine enumerations.
// Unrecognized labels resolve to the Unknown sentinel rather than failing:
// the value is validated where it matters, at index construction.
var (
	distanceLabels = map[string]engine.DistanceFunction{
		"unknown":                engine.DistanceUnknown,
		"negative_inner_product": engine.DistanceNegativeInnerProduct,
		"euclidean_squared":      engine.DistanceEuclideanSquared,
	}

	familyLabels = map[string]engine.LSHFamily{
		"unknown":        engine.FamilyUnknown,
		"hyperplane":     engine.FamilyHyperplane,
		"cross_polytope": engine.FamilyCrossPolytope,
	}

	storageLabels = map[string]engine.StorageHashTable{
		"unknown":                    engine.StorageUnknown,
		"flat_hash_table":            engine.StorageFlatHashTable,
		"bit_packed_flat_hash_table": engine.StorageBitPackedFlatHashTable,
		"stl_hash_table":             engine.StorageSTLHashTable,
		"linear_probing_hash_table":  engine.StorageLinearProbingHashTable,
	}
)

// lookup returns m[label], or def when the label is not in the table.
func lookup[V comparable](m map[string]V, label string, def V) V {
	if v, ok := m[label]; ok {
		return v
	}
	return def
}

// invert returns the label mapping to value, or fallback when no label
// does. Assumes the table is one-to-one.
func invert[V comparable](m map[string]V, value V, fallback string) string {
	for label, v := range m {
		if v == value {
			return label
		}
	}
	return fallback
}

// ParameterBuilder produces and incrementally refines the construction
// parameters an Index is built from.
//
// Setters mutate the builder in place and return it for chaining. The
// configuration handed to NewIndex is a value snapshot: mutating the
// builder afterwards does not affect an already-built index.
//
// Example:
//
//	b, err := lshnn.NewParameterBuilder(pointCount, 128)
//	if err != nil {
//	    return err
//	}
//	params := b.Family("hyperplane").
//	    Distance("euclidean_squared").
//	    NumHashTables(16).
//	    Snapshot()
type ParameterBuilder struct {
	points int
	params engine.Params
}

// NewParameterBuilder creates a builder for a dataset of the given size and
// dimension, pre-filled with engine defaults for the squared-Euclidean
// metric and the engine's recommended (auto-tuned) construction strategy.
func NewParameterBuilder(points, dimension int) (*ParameterBuilder, error) {
	if points <= 0 || dimension <= 0 {
		return nil, &ErrInvalidDimension{Points: points, Dimension: dimension}
	}
	return &ParameterBuilder{
		points: points,
		params: engine.DefaultParameters(points, dimension, engine.DistanceEuclideanSquared, true),
	}, nil
}

// WithDefaults recomputes all parameters from engine defaults for the named
// distance metric. Unrecognized labels resolve to the unknown metric.
func (b *ParameterBuilder) WithDefaults(distance string) *ParameterBuilder {
	b.params = engine.DefaultParameters(b.points, b.params.Dimension,
		lookup(distanceLabels, distance, engine.DistanceUnknown), true)
	return b
}

// Distance sets the distance metric used in similarity search.
// One of "negative_inner_product", "euclidean_squared" or "unknown";
// any other label resolves to "unknown".
func (b *ParameterBuilder) Distance(label string) *ParameterBuilder {
	b.params.Distance = lookup(distanceLabels, label, engine.DistanceUnknown)
	return b
}

// Family sets the LSH hash-function family.
// One of "hyperplane", "cross_polytope" or "unknown"; any other label
// resolves to "unknown".
func (b *ParameterBuilder) Family(label string) *ParameterBuilder {
	b.params.Family = lookup(familyLabels, label, engine.FamilyUnknown)
	return b
}

// Storage sets the bucket storage strategy.
// One of "flat_hash_table", "bit_packed_flat_hash_table", "stl_hash_table",
// "linear_probing_hash_table" or "unknown"; any other label resolves to
// "unknown".
func (b *ParameterBuilder) Storage(label string) *ParameterBuilder {
	b.params.Storage = lookup(storageLabels, label, engine.StorageUnknown)
	return b
}

// NumHashFunctions sets the number of hash functions per table.
// No range validation happens here; nonsensical combinations are rejected
// at index construction.
func (b *ParameterBuilder) NumHashFunctions(k int) *ParameterBuilder {
	b.params.HashFunctions = k
	return b
}

// NumHashTables sets the number of hash tables.
func (b *ParameterBuilder) NumHashTables(l int) *ParameterBuilder {
	b.params.HashTables = l
	return b
}

// Rotations sets the number of pseudo-rotations used with cross-polytope
// hashing. A value of 1 is recommended for dense data, 2 for sparse.
func (b *ParameterBuilder) Rotations(r int) *ParameterBuilder {
	b.params.Rotations = r
	return b
}

// Seed sets the seed for deterministic table construction.
func (b *ParameterBuilder) Seed(seed uint64) *ParameterBuilder {
	b.params.Seed = seed
	return b
}

// Threads sets the number of worker goroutines used during construction.
// Zero means one worker per available CPU.
func (b *ParameterBuilder) Threads(n int) *ParameterBuilder {
	b.params.SetupThreads = n
	return b
}

// Points returns the dataset size the builder was created for.
func (b *ParameterBuilder) Points() int { return b.points }

// Snapshot returns the current parameters by value. The returned copy is
// independent of the builder: later setter calls do not affect it.
func (b *ParameterBuilder) Snapshot() engine.Params {
	return b.params
}

// Describe renders the current parameter values as a human-readable,
// multi-line summary. Enum fields are shown via reverse label lookup
// ("unknown" when no label maps back). Diagnostic output only; nothing
// parses it.
func (b *ParameterBuilder) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "points: %d\n", b.points)
	fmt.Fprintf(&sb, "dimension: %d\n", b.params.Dimension)
	fmt.Fprintf(&sb, "hashFunctions: %d\n", b.params.HashFunctions)
	fmt.Fprintf(&sb, "hashTables: %d\n", b.params.HashTables)
	fmt.Fprintf(&sb, "seed: %d\n", b.params.Seed)
	fmt.Fprintf(&sb, "lshFamily: %s\n", invert(familyLabels, b.params.Family, "unknown"))
	fmt.Fprintf(&sb, "distance: %s\n", invert(distanceLabels, b.params.Distance, "unknown"))
	fmt.Fprintf(&sb, "storage: %s\n", invert(storageLabels, b.params.Storage, "unknown"))
	fmt.Fprintf(&sb, "rotations: %d\n", b.params.Rotations)
	fmt.Fprintf(&sb, "threads: %d\n", b.params.SetupThreads)
	fmt.Fprintf(&sb, "lastCPDimension: %d\n", b.params.LastCPDimension)
	fmt.Fprintf(&sb, "featureHashingDimension: %d\n", b.params.FeatureHashingDimension)
	return sb.String()
}
