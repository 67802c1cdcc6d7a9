package cluster

import "testing"

func TestAverageCPU(t *testing.T) {
	usages := []PodUsage{{CPU: 0.3}, {CPU: 0.5}}
	avg := AverageCPU(usages, 2)
	if avg != 0.4 {
		t.Errorf("expected avg 0.4, got %v", avg)
	}
}

func TestAverageCPU_MissingSampleDilutesAverage(t *testing.T) {
	usages := []PodUsage{{CPU: 0.6}}
	avg := AverageCPU(usages, 2)
	if avg != 0.3 {
		t.Errorf("expected avg 0.3 (divided by pod count, not sample count), got %v", avg)
	}
}

func TestAverageCPU_ZeroPods(t *testing.T) {
	avg := AverageCPU(nil, 0)
	if avg != 0 {
		t.Errorf("expected avg 0, got %v", avg)
	}
}
