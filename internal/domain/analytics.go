package domain

import (
	"fmt"
	"math"
)

// ChartPeriod selects the bucketing of a focus chart.
type ChartPeriod string

const (
	ChartWeek  ChartPeriod = "week"
	ChartMonth ChartPeriod = "month"
	ChartYear  ChartPeriod = "year"
)

// ParseChartPeriod validates a period name.
func ParseChartPeriod(s string) (ChartPeriod, error) {
	switch ChartPeriod(s) {
	case ChartWeek, ChartMonth, ChartYear:
		return ChartPeriod(s), nil
	}
	return "", fmt.Errorf("unknown chart period %q (want week, month or year)", s)
}

// ChartData is a labelled series of focus totals. Labels may be empty for
// buckets that should not be annotated.
type ChartData struct {
	Period  ChartPeriod `json:"period"`
	Labels  []string    `json:"labels"`
	Minutes []int       `json:"minutes"`
	Hours   []float64   `json:"hours"`
}

// Append adds one bucket.
func (c *ChartData) Append(label string, minutes int) {
	c.Labels = append(c.Labels, label)
	c.Minutes = append(c.Minutes, minutes)
	c.Hours = append(c.Hours, MinutesToHours(minutes))
}

// TotalMinutes sums every bucket.
func (c *ChartData) TotalMinutes() int {
	total := 0
	for _, m := range c.Minutes {
		total += m
	}
	return total
}

// MinutesToHours converts minutes to hours rounded to one decimal.
func MinutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// FormatFocusTime renders minutes as "Xh MMm".
func FormatFocusTime(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
