package probes

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

// MemoryInfo reports host memory in bytes.
type MemoryInfo struct {
	Total     uint64 `json:"total"`
	Available uint64 `json:"available"`
	Used      uint64 `json:"used"`
}

// StorageInfo reports storage summed across partitions, in bytes.
type StorageInfo struct {
	Total     uint64 `json:"total"`
	Available uint64 `json:"available"`
	Used      uint64 `json:"used"`
}

// SystemInfo is the host summary answered by the scan endpoint.
type SystemInfo struct {
	Platform  string      `json:"platform"`
	Version   string      `json:"version"`
	Arch      string      `json:"arch"`
	Memory    MemoryInfo  `json:"memory"`
	Storage   StorageInfo `json:"storage"`
	Uptime    uint64      `json:"uptime"`
	UserAgent string      `json:"userAgent"`
}

// Scan gathers the host summary. Individual collector failures leave
// their section zeroed; a scan never fails as a whole.
func Scan(ctx context.Context, userAgent string) SystemInfo {
	info := SystemInfo{
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		UserAgent: userAgent,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return nil
		}
		info.Memory = MemoryInfo{
			Total:     vm.Total,
			Available: vm.Available,
			Used:      vm.Total - vm.Available,
		}
		return nil
	})

	g.Go(func() error {
		partitions, err := disk.PartitionsWithContext(ctx, false)
		if err != nil {
			return nil
		}
		var total, free uint64
		for _, part := range partitions {
			usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
			if err != nil {
				continue
			}
			total += usage.Total
			free += usage.Free
		}
		info.Storage = StorageInfo{Total: total, Available: free, Used: total - free}
		return nil
	})

	g.Go(func() error {
		if version, err := host.KernelVersionWithContext(ctx); err == nil {
			info.Version = version
		}
		if uptime, err := host.UptimeWithContext(ctx); err == nil {
			info.Uptime = uptime
		}
		return nil
	})

	_ = g.Wait()
	return info
}
