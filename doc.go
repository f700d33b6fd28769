// Package lshnn provides multi-probe LSH approximate nearest neighbor
// search for dense float vectors.
//
// The index is built once over a fixed column-major point set and then
// answers nearest-neighbor, k-nearest, radius and raw candidate queries
// against it. Two LSH families are supported, random hyperplanes and
// cross-polytope hashing, over four bucket storage strategies.
//
// # Quick Start
//
//	ps, _ := engine.NewPointSet(data, points, 128)
//	pb, _ := lshnn.NewParameterBuilder(points, 128)
//	pb.Distance("euclidean_squared").NumHashTables(20)
//	ix, _ := lshnn.NewIndex(ps, pb.Snapshot())
//	nearest, _ := ix.FindNearest(query)
//
// Point indices on the public surface are 1-based, referencing columns of
// the point set the index was built from.
//
// # Probe Calibration
//
// The probe count trades accuracy against query time. TuneNumProbes finds
// the smallest probe count meeting a target precision on a validation set
// with known answers:
//
//	probes, _ := ix.TuneNumProbes(queries, answers, 0.9)
//	ix.SetNumProbes(probes)
//
// # Key Features
//
//   - Hyperplane and cross-polytope hash families
//   - Multi-probe query sequences in nondecreasing perturbation cost order
//   - Flat, bit-packed, STL and linear-probing bucket storage
//   - Candidate cap and probe count tunable without rebuilding
//   - Parallel table construction
//   - Structured logging and pluggable metrics (Basic, Prometheus)
package lshnn
