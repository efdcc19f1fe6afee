package wink

import (
	"context"
	"sync"
)

// BatchResult contains the result of fetching a single device.
type BatchResult struct {
	Path   string  // The device path that was fetched
	Device *Device // Fresh record; nil on error or when unclassifiable
	Error  error   // Error if the fetch failed, nil on success
}

// BatchConfig configures batch execution behavior.
type BatchConfig struct {
	// MaxConcurrent is the maximum number of concurrent API calls.
	// Defaults to 10 if not specified.
	MaxConcurrent int

	// StopOnError determines whether to stop starting new fetches
	// when an error occurs. Default is false (fetch every device).
	StopOnError bool
}

// DefaultBatchConfig returns sensible defaults for batch operations.
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		MaxConcurrent: 10,
		StopOnError:   false,
	}
}

// GetDevicesBatch refreshes many devices concurrently with a bounded worker
// pool. Results are index-aligned with devices. Fetches skipped because of
// StopOnError report context.Canceled.
//
// Example:
//
//	devices, _ := client.GetDevices(ctx)
//	for _, r := range client.GetDevicesBatch(ctx, devices, nil) {
//	    if r.Error != nil {
//	        log.Printf("%s: %v", r.Path, r.Error)
//	    }
//	}
func (c *Client) GetDevicesBatch(ctx context.Context, devices []Device, cfg *BatchConfig) []BatchResult {
	if len(devices) == 0 {
		return nil
	}

	if cfg == nil {
		cfg = DefaultBatchConfig()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	results := make([]BatchResult, len(devices))
	var mu sync.Mutex
	var stopped bool

	// Worker pool using semaphore pattern
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i := range devices {
		device := &devices[i]

		mu.Lock()
		if stopped {
			mu.Unlock()
			results[i] = BatchResult{Path: device.Path, Error: context.Canceled}
			continue
		}
		mu.Unlock()

		select {
		case <-ctx.Done():
			results[i] = BatchResult{Path: device.Path, Error: ctx.Err()}
			continue
		default:
		}

		wg.Add(1)
		go func(idx int, d *Device) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = BatchResult{Path: d.Path, Error: ctx.Err()}
				return
			}

			mu.Lock()
			if stopped {
				mu.Unlock()
				results[idx] = BatchResult{Path: d.Path, Error: context.Canceled}
				return
			}
			mu.Unlock()

			fresh, err := c.GetDevice(ctx, d)
			results[idx] = BatchResult{Path: d.Path, Device: fresh, Error: err}

			if err != nil && cfg.StopOnError {
				mu.Lock()
				stopped = true
				mu.Unlock()
			}
		}(i, device)
	}

	wg.Wait()
	return results
}
