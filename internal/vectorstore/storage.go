package vectorstore

import (
	"context"
	"fmt"
	"strings"
)

// CollectionInfo summarizes a vector store collection.
type CollectionInfo struct {
	Name          string
	Status        string
	PointsCount   int
	IndexedCount  int
	SegmentsCount int
	// Exists is false when the store reports the collection missing, which
	// is the normal state before the first embedding run.
	Exists bool
}

// Inspector reads collection state from the vector store the backend
// embeds into. It never writes.
type Inspector interface {
	Collection(ctx context.Context) (CollectionInfo, error)
	Collections(ctx context.Context) ([]string, error)
	DashboardURL() string
}

// DescribeMissing explains a collection the store does not hold, naming the
// collections it does hold so a misconfigured name is easy to spot.
func DescribeMissing(ctx context.Context, insp Inspector, name string) string {
	names, err := insp.Collections(ctx)
	switch {
	case err != nil:
		return name + ": not created yet"
	case len(names) == 0:
		return name + ": not created yet (store has no collections)"
	}
	return fmt.Sprintf("%s: not found among: %s", name, strings.Join(names, ", "))
}
