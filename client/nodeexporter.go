package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/logging"
)

const nodeExporterRequestTimeout = 5 * time.Second

// ScrapeCPUSamples fans out a bounded-parallel scrape of node_exporter's
// `/metrics` endpoint across every discovered instance (spec §4.2/§5).
// Per-instance failures are logged and dropped; they do not fail the
// cluster's tick.
func ScrapeCPUSamples(ctx context.Context, clusterID string, instances []Instance, now time.Time) ([]structs.CpuUsageSample, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		samples []structs.CpuUsageSample
		errs    *multierror.Error
	)

	wg.Add(len(instances))
	for _, inst := range instances {
		go func(inst Instance) {
			defer wg.Done()

			sample, err := scrapeInstance(ctx, clusterID, inst, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.Warning("client/nodeexporter: scrape of instance %s (%s) failed: %v",
					inst.InstanceID, inst.HostName, err)
				errs = multierror.Append(errs, err)
				return
			}
			samples = append(samples, *sample)
		}(inst)
	}
	wg.Wait()

	return samples, errs.ErrorOrNil()
}

func scrapeInstance(ctx context.Context, clusterID string, inst Instance, now time.Time) (*structs.CpuUsageSample, error) {
	reqCtx, cancel := context.WithTimeout(ctx, nodeExporterRequestTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:9100/metrics", inst.HostName)
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
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	var totalSeconds, idleSeconds float64
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "node_cpu_seconds_total") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		seconds, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		totalSeconds += seconds
		if strings.Contains(line, `mode="idle"`) {
			idleSeconds += seconds
		}
	}

	return &structs.CpuUsageSample{
		ClusterID:       clusterID,
		InstanceID:      inst.InstanceID,
		EventTime:       now,
		TotalCPUSeconds: totalSeconds,
		IdleCPUSeconds:  idleSeconds,
	}, nil
}
