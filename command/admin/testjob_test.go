package admin

import (
	"testing"
)

func TestSampleApps_returnsRequestedCount(t *testing.T) {
	apps := []string{"app1", "app2", "app3", "app4", "app5"}

	sampled := sampleApps(apps, 2)
	if len(sampled) != 2 {
		t.Fatalf("expected 2 sampled apps, got %d", len(sampled))
	}

	seen := make(map[string]bool)
	for _, id := range sampled {
		seen[id] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 distinct apps, got %d", len(seen))
	}
	for id := range seen {
		found := false
		for _, a := range apps {
			if a == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("sampled app %s not present in source set", id)
		}
	}
}

func TestSampleApps_doesNotMutateInput(t *testing.T) {
	apps := []string{"app1", "app2", "app3"}
	original := append([]string(nil), apps...)

	sampleApps(apps, 1)

	for i := range apps {
		if apps[i] != original[i] {
			t.Fatalf("expected input slice to be unmodified, got %v want %v", apps, original)
		}
	}
}

func TestSparkPiArgs(t *testing.T) {
	args := sparkPiArgs("4", "2G")

	want := map[string]bool{"4": false, "2G": false}
	for _, a := range args {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for v, found := range want {
		if !found {
			t.Fatalf("expected sparkPiArgs to include %q, got %v", v, args)
		}
	}
	if args[len(args)-1] != "1000000" {
		t.Fatalf("expected final argument to be the SparkPi precision, got %q", args[len(args)-1])
	}
}
