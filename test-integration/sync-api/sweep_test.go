package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mydv/vrsync/internal/api/common"
	"github.com/mydv/vrsync/internal/stats"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/state"
	"github.com/mydv/vrsync/test-integration/sync-api/helpers"
)

const (
	testAPIKey = "integration-key"

	validVehicle    = "3d6f0a52-9a2e-4c1b-8f4e-2b7d9c0e1a01"
	unknownVehicle  = "8b1e4f7a-5c3d-4e2f-9a6b-0c7d8e9f1a02"
	archivedVehicle = "c4a7e2d9-1b6f-4a3e-8d5c-7f0e9b2a1c03"
	noRegVehicle    = "5e0b3c1d-2a4f-4b6e-9c8d-1f2e3a4b5c04"
	expiredVehicle  = "9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e05"
)

// testFleet is two tenants: dealer-1 has two eligible vehicles, one archived
// and one without a registration; dealer-2 has one eligible vehicle
func testFleet() []helpers.SeedVehicle {
	return []helpers.SeedVehicle{
		{ID: validVehicle, TenantID: "dealer-1", Registration: "ab12 cde"},
		{ID: unknownVehicle, TenantID: "dealer-1", Registration: "XY99ZZZ"},
		{ID: archivedVehicle, TenantID: "dealer-1", Registration: "GH34JKL", Inactive: true},
		{ID: noRegVehicle, TenantID: "dealer-1"},
		{ID: expiredVehicle, TenantID: "dealer-2", Registration: "LM56NOP"},
	}
}

var _ = Describe("Sweeps", Label("sweep"), func() {
	var (
		tempDir      string
		registry     *helpers.FakeRegistry
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("sweep-test-")

		registry = helpers.NewFakeRegistry(testAPIKey).
			WithValid("AB12CDE", "Valid", "2027-03-01").
			WithValid("LM56NOP", "Expired", "2024-01-31")

		seedPath := helpers.WriteSeedYAML(tempDir, testFleet())
		configFile := helpers.WriteConfigYAML(tempDir, registry.URL, testAPIKey, seedPath, helpers.ConfigOptions{})

		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		registry.Close()
		cleanupTempDir(tempDir)
	})

	It("refreshes the stale vehicles of one tenant and reports each outcome", func() {
		resp, err := serverHelper.TriggerSweep(`{"tenantId":"dealer-1"}`)
		Expect(err).NotTo(HaveOccurred())
		report := helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		Expect(report.Candidates).To(Equal(2))
		Expect(report.Groups).To(Equal(1))
		Expect(report.Processed).To(Equal(2))
		Expect(report.Updated).To(Equal(1))
		Expect(report.Errors).To(Equal(1))
		Expect(report.Cancelled).To(BeFalse())
		Expect(report.Outcomes).To(HaveLen(2))

		byRegistration := map[string]pkgsync.Outcome{}
		for _, o := range report.Outcomes {
			byRegistration[o.Registration] = o
		}
		Expect(byRegistration["AB12CDE"].Success).To(BeTrue())
		Expect(byRegistration["AB12CDE"].RoadworthinessStatus).To(Equal("Valid"))
		Expect(byRegistration["AB12CDE"].ExpiryDate).To(Equal("2027-03-01"))
		Expect(byRegistration["XY99ZZZ"].Success).To(BeFalse())
		Expect(byRegistration["XY99ZZZ"].Error).To(Equal("not-found"))

		By("calling the registry once per vehicle, since not-found is terminal")
		Expect(registry.Calls("AB12CDE")).To(Equal(1))
		Expect(registry.Calls("XY99ZZZ")).To(Equal(1))
		Expect(registry.Calls("LM56NOP")).To(BeZero())
	})

	It("skips vehicles refreshed within the threshold unless forced", func() {
		resp, err := serverHelper.TriggerSweep(`{"tenantId":"dealer-1"}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		resp, err = serverHelper.TriggerSweep(`{"tenantId":"dealer-1"}`)
		Expect(err).NotTo(HaveOccurred())
		second := helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)
		Expect(second.Candidates).To(Equal(1), "only the never-checked vehicle is still stale")
		Expect(registry.Calls("AB12CDE")).To(Equal(1))

		resp, err = serverHelper.TriggerSweep(`{"tenantId":"dealer-1","forceRefresh":true}`)
		Expect(err).NotTo(HaveOccurred())
		forced := helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)
		Expect(forced.Candidates).To(Equal(2))
		Expect(registry.Calls("AB12CDE")).To(Equal(2))
	})

	It("sweeps every tenant in groups of the requested size", func() {
		resp, err := serverHelper.TriggerSweep(`{"batchSize":1}`)
		Expect(err).NotTo(HaveOccurred())
		report := helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		Expect(report.Candidates).To(Equal(3))
		Expect(report.Groups).To(Equal(3))
		Expect(report.Updated).To(Equal(2))
		Expect(registry.TotalCalls()).To(Equal(3))
	})

	It("rejects a malformed trigger", func() {
		resp, err := serverHelper.TriggerSweep(`{"batchSize":-1}`)
		Expect(err).NotTo(HaveOccurred())
		errResp := helpers.DecodeJSON[common.ErrorResponse](resp, http.StatusBadRequest)
		Expect(errResp.Error).NotTo(BeEmpty())

		resp, err = serverHelper.TriggerSweep(`{"unknownField":true}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[common.ErrorResponse](resp, http.StatusBadRequest)

		resp, err = serverHelper.TriggerSweep(`{"tenantId":"dealer 1"}`)
		Expect(err).NotTo(HaveOccurred())
		errResp = helpers.DecodeJSON[common.ErrorResponse](resp, http.StatusBadRequest)
		Expect(errResp.Error).To(ContainSubstring("invalid tenant ID"))
		Expect(registry.TotalCalls()).To(BeZero())
	})

	It("reports freshness statistics that follow the sweep", func() {
		resp, err := serverHelper.GetStats("dealer-1")
		Expect(err).NotTo(HaveOccurred())
		before := helpers.DecodeJSON[stats.Stats](resp, http.StatusOK)
		Expect(before).To(Equal(stats.Stats{Total: 2, NeedingRefresh: 2, UnknownStatus: 2}))

		resp, err = serverHelper.TriggerSweep(`{}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		resp, err = serverHelper.GetStats("dealer-1")
		Expect(err).NotTo(HaveOccurred())
		after := helpers.DecodeJSON[stats.Stats](resp, http.StatusOK)
		Expect(after).To(Equal(stats.Stats{Total: 2, WithData: 1, NeedingRefresh: 1, ValidStatus: 1, UnknownStatus: 1}))

		resp, err = serverHelper.GetStats("")
		Expect(err).NotTo(HaveOccurred())
		all := helpers.DecodeJSON[stats.Stats](resp, http.StatusOK)
		Expect(all.Total).To(Equal(3))
		Expect(all.ExpiredStatus).To(Equal(1))
	})

	It("records the status of each swept scope", func() {
		resp, err := serverHelper.GetSweepStatuses()
		Expect(err).NotTo(HaveOccurred())
		empty := helpers.DecodeJSON[sweepStatuses](resp, http.StatusOK)
		Expect(empty.Sweeps).To(BeEmpty())

		resp, err = serverHelper.TriggerSweep(`{"tenantId":"dealer-1"}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		resp, err = serverHelper.TriggerSweep(`{}`)
		Expect(err).NotTo(HaveOccurred())
		_ = helpers.DecodeJSON[pkgsync.SweepReport](resp, http.StatusOK)

		resp, err = serverHelper.GetSweepStatuses()
		Expect(err).NotTo(HaveOccurred())
		got := helpers.DecodeJSON[sweepStatuses](resp, http.StatusOK)
		Expect(got.Sweeps).To(HaveLen(2))

		tenant := got.Sweeps["dealer-1"]
		Expect(tenant.Phase).To(Equal(state.SweepPhaseComplete))
		Expect(tenant.Candidates).To(Equal(2))
		Expect(tenant.Updated).To(Equal(1))
		Expect(tenant.Errors).To(Equal(1))
		Expect(tenant.LastSweepTime).NotTo(BeNil())

		// the tenant sweep refreshed AB12CDE, so only the failures are still stale
		all := got.Sweeps[state.AllTenants]
		Expect(all.Phase).To(Equal(state.SweepPhaseComplete))
		Expect(all.Candidates).To(Equal(2))
		Expect(all.AttemptCount).To(BeZero())
	})
})

type sweepStatuses struct {
	Sweeps map[string]state.SweepStatus `json:"sweeps"`
}
