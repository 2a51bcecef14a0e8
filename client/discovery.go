package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/elsevier-core-engineering/emrscale/logging"
)

const discoveryRequestTimeout = 5 * time.Second

type proxyResponse struct {
	Master []string `json:"MASTER"`
	Core   []string `json:"CORE"`
	Task   []string `json:"TASK"`
}

// DiscoverInstances resolves the set of running instances for a
// cluster, preferring the proxy endpoint named by the `api_host`
// environment variable and falling back to the cluster service SDK
// paginator on any failure (spec §4.2).
func DiscoverInstances(ctx context.Context, provider Provider, clusterID string) ([]Instance, error) {
	host := os.Getenv("api_host")
	if host != "" {
		instances, err := discoverViaProxy(ctx, host, clusterID)
		if err == nil {
			return instances, nil
		}
		logging.Warning("client/discovery: proxy discovery for cluster %s via %s failed: %v; "+
			"falling back to native API", clusterID, host, err)

		instances, fallbackErr := provider.ListInstances(ctx, clusterID)
		if fallbackErr != nil {
			return nil, multierror.Append(err, fallbackErr)
		}
		return instances, nil
	}

	return provider.ListInstances(ctx, clusterID)
}

func discoverViaProxy(ctx context.Context, host, clusterID string) ([]Instance, error) {
	url := fmt.Sprintf("http://%s/portal/emrautoscaling?cluster_id=%s", host, clusterID)
	reqCtx, cancel := context.WithTimeout(ctx, discoveryRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client/discovery: proxy returned status %d", resp.StatusCode)
	}

	var body proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	ips := append(append(body.Core, body.Master...), body.Task...)
	instances := make([]Instance, 0, len(ips))
	for _, ip := range ips {
		instances = append(instances, Instance{
			InstanceID: fmt.Sprintf("%s,%s", clusterID, ip),
			HostName:   ip,
		})
	}
	return instances, nil
}
