package simdj

import "github.com/klauspost/cpuid/v2"

// Capabilities reports the CPU features cpuid.CPU detected, surfaced for
// callers that want to log or assert on the execution environment. The
// Bitmap Engine itself is plain SWAR Go and runs identically regardless of
// these flags; this is diagnostic information, not a dispatch switch.
type Capabilities struct {
	VendorString string
	PhysicalCores int
	ThreadsPerCore int
	HasAVX2       bool
	HasAVX512F    bool
	HasSSE42      bool
	CacheLine     int
}

// QueryCapabilities reports the capabilities of the CPU the process is
// currently running on.
func QueryCapabilities() Capabilities {
	c := cpuid.CPU
	return Capabilities{
		VendorString:   c.BrandName,
		PhysicalCores:  c.PhysicalCores,
		ThreadsPerCore: c.ThreadsPerCore,
		HasAVX2:        c.Supports(cpuid.AVX2),
		HasAVX512F:     c.Supports(cpuid.AVX512F),
		HasSSE42:       c.Supports(cpuid.SSE42),
		CacheLine:      c.CacheLine,
	}
}

// SupportedCPU reports whether the current CPU meets the baseline this
// package assumes (none beyond what Go itself requires): it always
// returns true, and exists so callers ported from environments that
// gated a SIMD kernel behind a feature check have a stable call to make
// instead of deleting the check entirely.
func SupportedCPU() bool { return true }
