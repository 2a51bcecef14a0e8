package store

import (
	"time"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

const (
	metricsRetention = 48 * time.Hour
	cpuRetention     = 24 * time.Hour
)

// AppendMetricSample appends one YARN metrics row.
func (s *Store) AppendMetricSample(sample *structs.MetricSample) error {
	return s.db.Create(sample).Error
}

// AppendCPUSamples appends a batch of CPU usage rows collected in one
// tick's fan-out scrape.
func (s *Store) AppendCPUSamples(samples []structs.CpuUsageSample) error {
	if len(samples) == 0 {
		return nil
	}
	return s.db.Create(&samples).Error
}

// AppendAvgMetric appends one derived sliding-window average row, one
// per successful tick (spec §3/§4.4, §8 invariant 7).
func (s *Store) AppendAvgMetric(avg *structs.AvgMetric) error {
	return s.db.Create(avg).Error
}

// AppendResizeEvent appends one audit-trail row (spec §3/§4.6).
func (s *Store) AppendResizeEvent(event *structs.ResizeEvent) error {
	return s.db.Create(event).Error
}

// AppendQueueEvent persists one inbound event-bus message verbatim.
func (s *Store) AppendQueueEvent(event *structs.QueueEvent) error {
	return s.db.Create(event).Error
}

// Sweep deletes rows older than the retention bounds in spec §3: two
// days for metrics/events, one day for CPU samples. Run once at the end
// of every tick.
func (s *Store) Sweep(now time.Time) error {
	if err := s.db.Where("event_time < ?", now.Add(-metricsRetention)).Delete(&structs.MetricSample{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("event_time < ?", now.Add(-metricsRetention)).Delete(&structs.AvgMetric{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("event_time < ?", now.Add(-metricsRetention)).Delete(&structs.ResizeEvent{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("event_time < ?", now.Add(-metricsRetention)).Delete(&structs.QueueEvent{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("event_time < ?", now.Add(-cpuRetention)).Delete(&structs.CpuUsageSample{}).Error; err != nil {
		return err
	}
	return nil
}
