package internal

import (
	"fmt"
	"strings"
	"time"
)

type RebalancingPeriod string

const (
	RebalancingPeriod_Never     RebalancingPeriod = "never"
	RebalancingPeriod_Monthly   RebalancingPeriod = "monthly"
	RebalancingPeriod_Quarterly RebalancingPeriod = "quarterly"
	RebalancingPeriod_Annually  RebalancingPeriod = "annually"
)

func NewRebalancingPeriod(s string) (*RebalancingPeriod, error) {
	value := RebalancingPeriod(strings.ToLower(s))
	switch value {
	case RebalancingPeriod_Never,
		RebalancingPeriod_Monthly,
		RebalancingPeriod_Quarterly,
		RebalancingPeriod_Annually:
		return &value, nil
	}
	return nil, fmt.Errorf("unknown rebalancing period %q", s)
}

func (p RebalancingPeriod) months() int {
	switch p {
	case RebalancingPeriod_Monthly:
		return 1
	case RebalancingPeriod_Quarterly:
		return 3
	case RebalancingPeriod_Annually:
		return 12
	}
	return 0
}

// RebalanceDates generates the scheduled rebalance dates for the window,
// stepping by calendar months from the start. Generated dates need not
// be trading days - the simulator acts on the first trading day at or
// after each one. "never" still yields the start date, which is the
// initial allocation event.
func RebalanceDates(start, end time.Time, period RebalancingPeriod) []time.Time {
	dates := []time.Time{}
	if months := period.months(); months > 0 {
		current := start
		for !current.After(end) {
			dates = append(dates, current)
			current = current.AddDate(0, months, 0)
		}
	}
	if len(dates) == 0 {
		dates = append(dates, start)
	}
	return dates
}
