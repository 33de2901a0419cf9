// Package fusion merges ranked result lists with Reciprocal Rank Fusion.
package fusion

import (
	"fmt"
	"sort"
)

// DefaultK is the RRF smoothing constant (Cormack et al. 2009).
const DefaultK = 60

// Document is one hit in a ranked list, as returned by a similarity search.
type Document struct {
	PointID       string
	Content       string
	Source        string
	LocationStart int
	LocationEnd   int
	Similarity    float32
}

// Key returns the identity used for deduplication: source plus start offset.
func (d Document) Key() string {
	return fmt.Sprintf("%s_%d", d.Source, d.LocationStart)
}

// Result is a fused document with its RRF score.
type Result struct {
	Document
	// Score is the sum of 1/(K+rank+1) over every list the document appears in.
	// It orders results; it is not a probability.
	Score float64
	// Hits is the number of lists the document appeared in.
	Hits int
}

// Fuser combines ranked lists.
type Fuser struct {
	k int
}

// New returns a Fuser with smoothing constant k. A negative k falls back to DefaultK.
func New(k int) *Fuser {
	if k < 0 {
		k = DefaultK
	}
	return &Fuser{k: k}
}

// K returns the smoothing constant.
func (f *Fuser) K() int { return f.k }

type entry struct {
	result     Result
	firstList  int
	firstRank  int
	lastListID int
}

// Fuse scores every distinct document (by Key) across lists and returns at
// most topK results, best first. Rank is the 0-based position within a list;
// only the first occurrence of a key inside one list counts. Ties are broken by
// hit count, then by first appearance (list order, then rank), so the output
// is a pure function of the input lists. topK <= 0 returns every document.
func (f *Fuser) Fuse(lists [][]Document, topK int) []Result {
	entries := make(map[string]*entry)
	order := make([]*entry, 0)

	for li, list := range lists {
		for rank, doc := range list {
			key := doc.Key()
			e, ok := entries[key]
			if !ok {
				e = &entry{
					result:     Result{Document: doc},
					firstList:  li,
					firstRank:  rank,
					lastListID: -1,
				}
				entries[key] = e
				order = append(order, e)
			}
			if e.lastListID == li {
				continue
			}
			e.lastListID = li
			e.result.Score += 1.0 / float64(f.k+rank+1)
			e.result.Hits++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if a.result.Hits != b.result.Hits {
			return a.result.Hits > b.result.Hits
		}
		if a.firstList != b.firstList {
			return a.firstList < b.firstList
		}
		return a.firstRank < b.firstRank
	})

	if topK > 0 && len(order) > topK {
		order = order[:topK]
	}

	results := make([]Result, len(order))
	for i, e := range order {
		results[i] = e.result
	}
	return results
}
