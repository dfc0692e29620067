package ranking

import (
	"context"
	"log/slog"
	"sort"
)

// Ranker orders records by their weighted composite score.
type Ranker struct {
	logger *slog.Logger
}

// NewRanker creates a Ranker. A nil logger discards debug output.
func NewRanker(logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ranker{logger: logger}
}

// Rank returns the records sorted ascending by composite score. The sort is
// stable, so records with equal scores keep their input order. The input
// slice is not modified.
func (r *Ranker) Rank(records []Record, w WeightSet) []Record {
	nw := w.Normalize()

	type keyed struct {
		rec   Record
		score float64
	}
	verbose := r.logger.Enabled(context.Background(), slog.LevelDebug)
	items := make([]keyed, len(records))
	for i, rec := range records {
		res := Score(rec, nw)
		items[i] = keyed{rec: rec, score: res.TotalScore}
		if verbose {
			r.logger.Debug("scored record", "index", i, "breakdown", res)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score < items[j].score
	})

	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}

	r.logger.Debug("ranked records",
		"count", len(out),
		"weights", w,
		"weight_sum", w.Sum(),
	)
	return out
}

// RankRequest ranks a validated request.
func (r *Ranker) RankRequest(req *Request) []Record {
	return r.Rank(req.Records, req.Weights)
}
