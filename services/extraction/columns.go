package extraction

import (
	"math"
	"sort"

	"courtpilot/models"
)

// ClusterTolerance is the maximum pixel distance between an element's X
// coordinate and a cluster representative for the element to join that
// cluster's court column.
const ClusterTolerance = 10.0

// ColumnCluster groups elements sharing one vertical band of screen space.
// Transient: it lives for a single extraction pass and is re-derived on every
// page load, so court numbering never survives a navigation.
type ColumnCluster struct {
	RepresentativeX float64
	Members         []int // indexes into the pass's cell slice
}

// CourtAssignment is the outcome of one column-inference pass.
type CourtAssignment struct {
	// Courts maps a cell index to its court id (1-based, leftmost column = 1).
	Courts map[int]int
	// Clusters holds the discovered columns sorted left to right.
	Clusters []ColumnCluster
}

// InferColumns clusters cell X coordinates into court columns. Cells are
// scanned in arrival order; each joins the first existing cluster whose
// representative lies within ClusterTolerance, otherwise it founds a new
// cluster with its own X as representative. First-fit, not nearest-fit: a
// cell near the boundary between two clusters sticks with whichever cluster
// was created first, even when a later one is closer. Representatives are
// fixed by the founding cell and never re-centered.
//
// After the scan, clusters are ordered by representative X ascending and the
// rank+1 becomes the court id. Zero cells yield an empty assignment.
func InferColumns(cells []models.GridCell) CourtAssignment {
	var clusters []ColumnCluster

	for i, cell := range cells {
		joined := -1
		for c := range clusters {
			if math.Abs(cell.X-clusters[c].RepresentativeX) <= ClusterTolerance {
				joined = c
				break
			}
		}
		if joined == -1 {
			clusters = append(clusters, ColumnCluster{RepresentativeX: cell.X})
			joined = len(clusters) - 1
		}
		clusters[joined].Members = append(clusters[joined].Members, i)
	}

	sort.Slice(clusters, func(a, b int) bool {
		return clusters[a].RepresentativeX < clusters[b].RepresentativeX
	})

	courts := make(map[int]int, len(cells))
	for rank, cluster := range clusters {
		for _, cellIdx := range cluster.Members {
			courts[cellIdx] = rank + 1
		}
	}

	return CourtAssignment{Courts: courts, Clusters: clusters}
}

// Validate surfaces a LayoutMismatch when the inferred column count differs
// from the venue's expected court count. The caller decides whether to retry
// the navigation with a longer wait or fail the run; guessing is never done
// here.
func (a CourtAssignment) Validate(expectedCourts int) error {
	if len(a.Clusters) != expectedCourts {
		return NewLayoutMismatchError(len(a.Clusters), expectedCourts)
	}
	return nil
}
