package ranking

import "fmt"

// WeightSet holds the caller-supplied priority for each record attribute.
// Weights are relative: they are normalized against their sum before use.
type WeightSet struct {
	Day   int `json:"d"`
	Price int `json:"p"`
	Rank  int `json:"r"`
}

// NormalizedWeightSet is a WeightSet divided by its sum.
type NormalizedWeightSet struct {
	Day   float64
	Price float64
	Rank  float64
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() int {
	return w.Day + w.Price + w.Rank
}

// Validate checks that no weight is negative.
func (w WeightSet) Validate() error {
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %d", v)
		}
	}
	return nil
}

// Normalize scales the weights so they sum to 1.0. An all-zero set has no
// meaningful proportion and normalizes to all zeros, which gives every record
// the same score.
func (w WeightSet) Normalize() NormalizedWeightSet {
	sum := float64(w.Day) + float64(w.Price) + float64(w.Rank)
	if sum == 0 {
		return NormalizedWeightSet{}
	}
	return NormalizedWeightSet{
		Day:   float64(w.Day) / sum,
		Price: float64(w.Price) / sum,
		Rank:  float64(w.Rank) / sum,
	}
}

func (w WeightSet) asList() []int {
	return []int{w.Day, w.Price, w.Rank}
}
