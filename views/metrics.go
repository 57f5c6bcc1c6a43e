// ABOUTME: Aggregate pipeline metrics and activity counts for dashboards and reports
// ABOUTME: Guards every ratio against empty collections
package views

import "github.com/harperreed/crmsync/models"

type Metrics struct {
	TotalContacts   int     `json:"total_contacts"`
	TotalDeals      int     `json:"total_deals"`
	ActiveDeals     int     `json:"active_deals"`
	WonDeals        int     `json:"won_deals"`
	PipelineValue   float64 `json:"pipeline_value"`
	Revenue         float64 `json:"revenue"`
	ConversionRate  float64 `json:"conversion_rate"`
	AverageDealSize float64 `json:"average_deal_size"`
	TotalActivities int     `json:"total_activities"`
}

// ComputeMetrics derives the dashboard figures. Conversion rate is a
// percentage of all deals; both ratios are 0 when their denominator is.
func ComputeMetrics(contacts []models.Contact, deals []models.Deal, activities []models.Activity) Metrics {
	m := Metrics{
		TotalContacts:   len(contacts),
		TotalDeals:      len(deals),
		TotalActivities: len(activities),
	}
	for _, d := range deals {
		m.PipelineValue += d.Value
		if !d.Stage.Closed() {
			m.ActiveDeals++
		}
		if d.Stage == models.StageClosedWon {
			m.WonDeals++
			m.Revenue += d.Value
		}
	}
	if m.TotalDeals > 0 {
		m.ConversionRate = float64(m.WonDeals) / float64(m.TotalDeals) * 100
	}
	if m.WonDeals > 0 {
		m.AverageDealSize = m.Revenue / float64(m.WonDeals)
	}
	return m
}

type ActivityCount struct {
	Type  models.ActivityType `json:"type"`
	Count int                 `json:"count"`
}

// ActivityTypeCounts counts activities per type in report order; unknown
// types are skipped.
func ActivityTypeCounts(activities []models.Activity) []ActivityCount {
	counts := map[models.ActivityType]int{}
	for _, a := range activities {
		counts[a.Type]++
	}
	out := make([]ActivityCount, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		out[i] = ActivityCount{Type: t, Count: counts[t]}
	}
	return out
}
