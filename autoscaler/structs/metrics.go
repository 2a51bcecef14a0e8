package structs

import "time"

// MetricSample is one YARN ClusterMetrics snapshot, appended every tick
// for a cluster (spec §3). Field names mirror the YARN REST API's
// clusterMetrics document, minus every key ending in "AcrossPartition".
type MetricSample struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClusterID string    `gorm:"index:idx_cluster_time" json:"cluster_id"`
	EventTime time.Time `gorm:"index:idx_cluster_time" json:"event_time"`

	AppsRunning int64 `json:"apps_running"`
	AppsPending int64 `json:"apps_pending"`

	ReservedMB  int64 `json:"reserved_mb"`
	PendingMB   int64 `json:"pending_mb"`
	AllocatedMB int64 `json:"allocated_mb"`
	AvailableMB int64 `json:"available_mb"`
	TotalMB     int64 `json:"total_mb"`

	ReservedVCores  int64 `json:"reserved_vcores"`
	PendingVCores   int64 `json:"pending_vcores"`
	AllocatedVCores int64 `json:"allocated_vcores"`
	AvailableVCores int64 `json:"available_vcores"`
	TotalVCores     int64 `json:"total_vcores"`

	ActiveNodes int64 `json:"active_nodes"`
}

// CpuUsageSample is one (cluster, instance) scrape of the node exporter's
// monotonic CPU-seconds counters (spec §3).
type CpuUsageSample struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ClusterID      string    `gorm:"index:idx_cluster_instance_time" json:"cluster_id"`
	InstanceID     string    `gorm:"index:idx_cluster_instance_time" json:"instance_id"`
	EventTime      time.Time `gorm:"index:idx_cluster_instance_time" json:"event_time"`
	TotalCPUSeconds float64  `json:"total_cpu_seconds"`
	IdleCPUSeconds  float64  `json:"idle_cpu_seconds"`
}

// Busy returns the portion of TotalCPUSeconds spent outside the idle
// mode.
func (s CpuUsageSample) Busy() float64 {
	return s.TotalCPUSeconds - s.IdleCPUSeconds
}

// AvgMetric is the derived per-tick aggregate emitted by the aggregator
// (spec §3/§4.4). CPUUtilisation is a pointer because it is undefined
// (null) when the aggregation window's CPU-seconds delta is zero.
type AvgMetric struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClusterID string    `json:"cluster_id"`
	EventTime time.Time `json:"event_time"`

	AppsRunning float64 `json:"apps_running"`
	AppsPending float64 `json:"apps_pending"`

	ReservedMB  float64 `json:"reserved_mb"`
	PendingMB   float64 `json:"pending_mb"`
	AllocatedMB float64 `json:"allocated_mb"`
	AvailableMB float64 `json:"available_mb"`
	TotalMB     float64 `json:"total_mb"`

	ReservedVCores  float64 `json:"reserved_vcores"`
	PendingVCores   float64 `json:"pending_vcores"`
	AllocatedVCores float64 `json:"allocated_vcores"`
	AvailableVCores float64 `json:"available_vcores"`
	TotalVCores     float64 `json:"total_vcores"`

	CPUUtilisation *float64 `json:"cpu_utilisation"`
}
