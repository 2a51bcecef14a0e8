package autoscaler

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

// ErrInsufficientSamples is returned when fewer than two MetricSample
// rows exist inside the lookback window (spec §4.4/§8 invariant 7).
var ErrInsufficientSamples = errors.New("aggregator: insufficient metric samples in lookback window")

// ComputeAverages produces the sliding-window AvgMetric for one cluster.
// freshCPUSamples is the set of CpuUsageSample rows appended earlier in
// this same tick; the lookback window's matching oldest sample per
// instance is read back from db.
func ComputeAverages(db *gorm.DB, cluster *structs.Cluster, now time.Time, freshCPUSamples []structs.CpuUsageSample) (*structs.AvgMetric, error) {
	window := now.Add(-time.Duration(cluster.LookbackMinutes) * time.Minute)

	var samples []structs.MetricSample
	if err := db.Where("cluster_id = ? AND event_time > ?", cluster.ID, window).
		Order("event_time asc").Find(&samples).Error; err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, ErrInsufficientSamples
	}

	avg := &structs.AvgMetric{
		ClusterID: cluster.ID,
		EventTime: now,
	}
	n := float64(len(samples))
	for _, s := range samples {
		avg.AppsRunning += float64(s.AppsRunning) / n
		avg.AppsPending += float64(s.AppsPending) / n
		avg.ReservedMB += float64(s.ReservedMB) / n
		avg.PendingMB += float64(s.PendingMB) / n
		avg.AllocatedMB += float64(s.AllocatedMB) / n
		avg.AvailableMB += float64(s.AvailableMB) / n
		avg.TotalMB += float64(s.TotalMB) / n
		avg.ReservedVCores += float64(s.ReservedVCores) / n
		avg.PendingVCores += float64(s.PendingVCores) / n
		avg.AllocatedVCores += float64(s.AllocatedVCores) / n
		avg.AvailableVCores += float64(s.AvailableVCores) / n
		avg.TotalVCores += float64(s.TotalVCores) / n
	}

	utilisation, err := computeCPUUtilisation(db, cluster.ID, window, freshCPUSamples)
	if err != nil {
		return nil, err
	}
	avg.CPUUtilisation = utilisation

	return avg, nil
}

// computeCPUUtilisation pairs each fresh CPU sample with the oldest
// sample for the same instance inside the lookback window and sums the
// busy/total deltas across every instance with both ends present (spec
// §3 AvgMetric / §4.4). Returns nil when the summed denominator is zero
// or negative.
func computeCPUUtilisation(db *gorm.DB, clusterID string, window time.Time, fresh []structs.CpuUsageSample) (*float64, error) {
	var newTotal, newBusy, oldTotal, oldBusy float64

	for _, sample := range fresh {
		var oldest structs.CpuUsageSample
		err := db.Where("cluster_id = ? AND instance_id = ? AND event_time >= ?",
			clusterID, sample.InstanceID, window).
			Order("event_time asc").
			Limit(1).
			Find(&oldest).Error
		if err != nil {
			return nil, err
		}
		if oldest.ID == 0 {
			continue
		}

		newTotal += sample.TotalCPUSeconds
		newBusy += sample.Busy()
		oldTotal += oldest.TotalCPUSeconds
		oldBusy += oldest.Busy()
	}

	denominator := newTotal - oldTotal
	if denominator <= 0 {
		return nil, nil
	}
	utilisation := (newBusy - oldBusy) / denominator
	return &utilisation, nil
}
