// Package aws builds the process-wide EC2 instance-type vcpu catalog
// used to translate VCPU-unit instance group capacity into instance
// counts (spec §4.6).
package aws

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/elsevier-core-engineering/emrscale/logging"
)

const cacheFileName = "emrscale-instance-types.json"

var (
	once    sync.Once
	catalog map[string]int
	catMu   sync.RWMutex
)

// VCPUCatalog returns the process-wide instance-type-to-vcpu map,
// building it on first use from a local file cache or, on a cache miss,
// from ec2.DescribeInstanceTypes (spec §4.6/§9 redesign note).
func VCPUCatalog(region string) map[string]int {
	once.Do(func() {
		catalog = loadCache()
		if len(catalog) == 0 {
			built, err := buildCatalog(region)
			if err != nil {
				logging.Error("cloud/aws: failed to build instance-type catalog: %v", err)
				catalog = map[string]int{}
				return
			}
			catalog = built
			saveCache(catalog)
		}
	})

	catMu.RLock()
	defer catMu.RUnlock()
	return catalog
}

// VCPUForInstanceType is the VCPULookup used by the executor.
func VCPUForInstanceType(region string) func(instanceType string) int {
	return func(instanceType string) int {
		cat := VCPUCatalog(region)
		return cat[instanceType]
	}
}

func buildCatalog(region string) (map[string]int, error) {
	sess := session.Must(session.NewSession())
	svc := ec2.New(sess, &aws.Config{Region: aws.String(region)})

	result := map[string]int{}
	err := svc.DescribeInstanceTypesPages(&ec2.DescribeInstanceTypesInput{}, func(page *ec2.DescribeInstanceTypesOutput, lastPage bool) bool {
		for _, it := range page.InstanceTypes {
			if it.InstanceType == nil || it.VCpuInfo == nil || it.VCpuInfo.DefaultVCpus == nil {
				continue
			}
			result[*it.InstanceType] = int(*it.VCpuInfo.DefaultVCpus)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	logging.Info("cloud/aws: built instance-type catalog with %d entries", len(result))
	return result, nil
}

func cachePath() string {
	return filepath.Join(os.TempDir(), cacheFileName)
}

func loadCache() map[string]int {
	data, err := os.ReadFile(cachePath())
	if err != nil {
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func saveCache(m map[string]int) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	_ = os.WriteFile(cachePath(), data, 0o644)
}
