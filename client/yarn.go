package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

const yarnRequestTimeout = 5 * time.Second

var httpClient = &http.Client{Timeout: yarnRequestTimeout}

type clusterMetricsResponse struct {
	ClusterMetrics map[string]json.Number `json:"clusterMetrics"`
}

// CollectYARNMetrics fetches and parses the YARN ResourceManager's
// cluster metrics document, discarding every field ending in
// "AcrossPartition" (spec §4.2).
func CollectYARNMetrics(ctx context.Context, masterDNS string) (*structs.MetricSample, error) {
	url := fmt.Sprintf("http://%s:8088/ws/v1/cluster/metrics", masterDNS)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client/yarn: unexpected status %d from %s", resp.StatusCode, url)
	}

	var body clusterMetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	sample := &structs.MetricSample{}
	for k, v := range body.ClusterMetrics {
		if strings.HasSuffix(k, "AcrossPartition") {
			continue
		}
		n, _ := v.Int64()
		switch k {
		case "appsRunning":
			sample.AppsRunning = n
		case "appsPending":
			sample.AppsPending = n
		case "reservedMB":
			sample.ReservedMB = n
		case "pendingMB":
			sample.PendingMB = n
		case "allocatedMB":
			sample.AllocatedMB = n
		case "availableMB":
			sample.AvailableMB = n
		case "totalMB":
			sample.TotalMB = n
		case "reservedVirtualCores":
			sample.ReservedVCores = n
		case "pendingVirtualCores":
			sample.PendingVCores = n
		case "allocatedVirtualCores":
			sample.AllocatedVCores = n
		case "availableVirtualCores":
			sample.AvailableVCores = n
		case "totalVirtualCores":
			sample.TotalVCores = n
		case "activeNodes":
			sample.ActiveNodes = n
		}
	}
	return sample, nil
}

type runningApp struct {
	ID string `json:"id"`
}

type appsResponse struct {
	Apps struct {
		App []runningApp `json:"app"`
	} `json:"apps"`
}

// ListRunningApps returns the ids of every RUNNING YARN application.
// Used only by admin tooling, never by the reconciliation loop (spec §6).
func ListRunningApps(ctx context.Context, masterDNS string) ([]string, error) {
	url := fmt.Sprintf("http://%s:8088/ws/v1/cluster/apps?states=RUNNING", masterDNS)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body appsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(body.Apps.App))
	for _, a := range body.Apps.App {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// KillApp requests termination of a YARN application. Used only by
// admin tooling (spec §6).
func KillApp(ctx context.Context, masterDNS, appID string) error {
	url := fmt.Sprintf("http://%s:8088/ws/v1/cluster/apps/%s/state", masterDNS, appID)
	payload := strings.NewReader(`{"state":"KILLED"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("client/yarn: kill-app %s returned status %d", appID, resp.StatusCode)
	}
	return nil
}
