package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/gomega"
)

// SeedVehicle is one entry of a generated seed file
type SeedVehicle struct {
	ID           string
	TenantID     string
	Registration string
	Inactive     bool
}

// WriteSeedYAML writes a vehicle seed file into dir and returns its path
func WriteSeedYAML(dir string, vehicles []SeedVehicle) string {
	var b strings.Builder
	b.WriteString("vehicles:\n")
	for _, v := range vehicles {
		fmt.Fprintf(&b, "  - id: %s\n    tenantId: %s\n", v.ID, v.TenantID)
		if v.Registration != "" {
			fmt.Fprintf(&b, "    registration: %q\n", v.Registration)
		}
		if v.Inactive {
			b.WriteString("    active: false\n")
		}
	}

	path := filepath.Join(dir, "seed.yaml")
	gomega.Expect(os.WriteFile(path, []byte(b.String()), 0600)).To(gomega.Succeed())
	return path
}

// ConfigOptions holds the tunables of WriteConfigYAML
type ConfigOptions struct {
	BatchSize   int
	MaxAttempts int
	Prometheus  bool
}

// WriteConfigYAML writes a memory-storage configuration pointing at the
// registry endpoint, with no pacing delays, and returns its path
func WriteConfigYAML(dir, endpoint, apiKey, seedPath string, opts ConfigOptions) string {
	keyPath := filepath.Join(dir, "api-key")
	gomega.Expect(os.WriteFile(keyPath, []byte(apiKey+"\n"), 0600)).To(gomega.Succeed())

	if opts.BatchSize == 0 {
		opts.BatchSize = 2
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 2
	}

	configContent := fmt.Sprintf(`registry:
  endpoint: %s
  apiKeyFile: %s
  timeout: 2s
  maxAttempts: %d
  baseDelay: 1ms
  throttleDelay: 1ms

sync:
  enabled: false
  batchSize: %d
  requestDelay: 0s
  batchDelay: 0s
  refreshThreshold: 168h

storage:
  type: memory
  seedFile: %s
`, endpoint, keyPath, opts.MaxAttempts, opts.BatchSize, seedPath)

	if opts.Prometheus {
		configContent += `
telemetry:
  enabled: true
  metrics:
    enabled: false
  tracing:
    enabled: false
  prometheus:
    enabled: true
`
	}

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, []byte(configContent), 0600)).To(gomega.Succeed())
	return path
}
