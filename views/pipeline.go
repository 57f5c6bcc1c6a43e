// ABOUTME: Pipeline board derivation grouping deals into the six stage buckets
// ABOUTME: Buckets keep input order and expose their total value
package views

import "github.com/harperreed/crmsync/models"

type StageBucket struct {
	Stage models.Stage  `json:"stage"`
	Label string        `json:"label"`
	Deals []models.Deal `json:"deals"`
	Value float64       `json:"value"`
}

// GroupByStage partitions deals into one bucket per stage in pipeline order.
// Deals with an unknown stage are left out.
func GroupByStage(deals []models.Deal) []StageBucket {
	buckets := make([]StageBucket, len(models.Stages))
	index := make(map[models.Stage]int, len(models.Stages))
	for i, s := range models.Stages {
		buckets[i] = StageBucket{Stage: s, Label: s.Label(), Deals: []models.Deal{}}
		index[s] = i
	}
	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			continue
		}
		buckets[i].Deals = append(buckets[i].Deals, d)
		buckets[i].Value += d.Value
	}
	return buckets
}

// StageValue is one point of the report's value-by-stage series.
type StageValue struct {
	Stage models.Stage `json:"stage"`
	Label string       `json:"label"`
	Count int          `json:"count"`
	Value float64      `json:"value"`
}

func StageValues(deals []models.Deal) []StageValue {
	buckets := GroupByStage(deals)
	out := make([]StageValue, len(buckets))
	for i, b := range buckets {
		out[i] = StageValue{Stage: b.Stage, Label: b.Label, Count: len(b.Deals), Value: b.Value}
	}
	return out
}
