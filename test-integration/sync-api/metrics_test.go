package integration

import (
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/test-integration/sync-api/helpers"
)

var _ = Describe("Prometheus endpoint", Label("metrics"), func() {
	var (
		tempDir      string
		registry     *helpers.FakeRegistry
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("metrics-test-")
		registry = helpers.NewFakeRegistry(testAPIKey).WithValid("AB12CDE", "Valid", "2027-03-01")

		seedPath := helpers.WriteSeedYAML(tempDir, testFleet())
		configFile := helpers.WriteConfigYAML(tempDir, registry.URL, testAPIKey, seedPath,
			helpers.ConfigOptions{Prometheus: true})

		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		registry.Close()
		cleanupTempDir(tempDir)
	})

	It("exposes sweep and lookup metrics after a sweep", func() {
		resp, err := serverHelper.TriggerSweep(`{"tenantId":"dealer-1"}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		resp, err = serverHelper.Get("/metrics")
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			_ = resp.Body.Close()
		}()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring("vrsync_lookups_total"))
		Expect(string(body)).To(ContainSubstring("vrsync_sweep_candidates"))
	})
})
