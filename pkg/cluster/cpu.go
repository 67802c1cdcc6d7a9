package cluster

// AverageCPU computes the mean CPU usage (cores) across usages, dividing
// by podCount (not len(usages)) so a metrics gap for some pods doesn't
// inflate the average — per §4.1 step 3, "avg_cpu = sum(cpu_i) / P".
func AverageCPU(usages []PodUsage, podCount int) float64 {
	if podCount <= 0 {
		return 0
	}
	var sum float64
	for _, u := range usages {
		sum += u.CPU
	}
	return sum / float64(podCount)
}
