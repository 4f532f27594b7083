package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// beaconTotal counts beacons by action and outcome
	beaconTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_beacon_total",
		Help: "Beacons received by action and result",
	}, []string{"action", "result"})

	// assignmentsTotal counts sessions bucketed into experiment arms
	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_assignments_total",
		Help: "New session assignments by hero headline arm",
	}, []string{"hero_headline"})

	scrollMilestonesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "landing_scroll_milestones_total",
		Help: "Scroll depth milestones reported",
	}, []string{"threshold"})

	pageViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "landing_page_renders_total",
		Help: "Landing page renders",
	})
)

func observeMilestones(fired []int) {
	for _, th := range fired {
		scrollMilestonesTotal.WithLabelValues(strconv.Itoa(th)).Inc()
	}
}
