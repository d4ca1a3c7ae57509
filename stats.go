package depot

import "math"

// Size histogram buckets. Fixed: clients chart these directly.
const (
	BucketTiny   = "0-1MB"
	BucketSmall  = "1-10MB"
	BucketMedium = "10-100MB"
	BucketLarge  = "100MB+"
)

// TypeStats aggregates files of one content category.
type TypeStats struct {
	Count      int     `json:"count"`
	TotalSize  int64   `json:"totalSize"`
	Percentage float64 `json:"percentage"`
}

// Stats is the aggregate view of a client namespace. It is derived on every
// request by walking the namespace; nothing is cached or persisted.
type Stats struct {
	TotalFiles    int                  `json:"totalFiles"`
	TotalSize     int64                `json:"totalSize"`
	FileTypes     map[string]TypeStats `json:"fileTypes"`
	SizeBreakdown map[string]int       `json:"sizeBreakdown"`
}

// newStats aggregates a file listing. An empty listing yields zero totals
// and empty maps, never a division by zero.
func newStats(files []File) *Stats {
	stats := &Stats{
		FileTypes:     make(map[string]TypeStats, 8),
		SizeBreakdown: make(map[string]int, 4),
	}
	if len(files) == 0 {
		return stats
	}

	stats.SizeBreakdown[BucketTiny] = 0
	stats.SizeBreakdown[BucketSmall] = 0
	stats.SizeBreakdown[BucketMedium] = 0
	stats.SizeBreakdown[BucketLarge] = 0

	for _, f := range files {
		stats.TotalFiles++
		stats.TotalSize += f.SizeBytes

		category := CategoryFromName(f.StoredName)
		ts := stats.FileTypes[category]
		ts.Count++
		ts.TotalSize += f.SizeBytes
		stats.FileTypes[category] = ts

		stats.SizeBreakdown[sizeBucket(f.SizeBytes)]++
	}

	for category, ts := range stats.FileTypes {
		ts.Percentage = roundPercent(float64(ts.Count) / float64(stats.TotalFiles) * 100)
		stats.FileTypes[category] = ts
	}

	return stats
}

// sizeBucket places a file size into its histogram bucket.
func sizeBucket(size int64) string {
	switch {
	case size < 1<<20:
		return BucketTiny
	case size < 10<<20:
		return BucketSmall
	case size < 100<<20:
		return BucketMedium
	default:
		return BucketLarge
	}
}

// roundPercent rounds to two decimal places.
func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
