package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/test-integration/sync-api/helpers"
)

var _ = Describe("Single vehicle refresh", Label("refresh"), func() {
	var (
		tempDir      string
		registry     *helpers.FakeRegistry
		serverHelper *helpers.ServerTestHelper
	)

	startServer := func(apiKey string) {
		seedPath := helpers.WriteSeedYAML(tempDir, testFleet())
		configFile := helpers.WriteConfigYAML(tempDir, registry.URL, apiKey, seedPath, helpers.ConfigOptions{MaxAttempts: 3})

		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	BeforeEach(func() {
		tempDir = createTempDir("refresh-test-")
		registry = helpers.NewFakeRegistry(testAPIKey).
			WithValid("AB12CDE", "Valid", "2027-03-01")
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
		}
		registry.Close()
		cleanupTempDir(tempDir)
	})

	Context("with a valid credential", func() {
		BeforeEach(func() {
			startServer(testAPIKey)
		})

		It("refreshes an eligible vehicle immediately", func() {
			resp, err := serverHelper.RefreshVehicle(validVehicle)
			Expect(err).NotTo(HaveOccurred())
			result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusOK)

			Expect(result.Success).To(BeTrue())
			Expect(result.RoadworthinessStatus).To(Equal("Valid"))
			Expect(result.ExpiryDate).To(Equal("2027-03-01"))
			Expect(registry.Calls("AB12CDE")).To(Equal(1))
		})

		It("returns the registry failure as the result", func() {
			resp, err := serverHelper.RefreshVehicle(unknownVehicle)
			Expect(err).NotTo(HaveOccurred())
			result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusOK)

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal("not-found"))
		})

		It("retries server errors up to the attempt ceiling", func() {
			registry.With("AB12CDE", helpers.RegistryAnswer{Status: http.StatusBadGateway})

			resp, err := serverHelper.RefreshVehicle(validVehicle)
			Expect(err).NotTo(HaveOccurred())
			result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusOK)

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal("network"))
			Expect(result.Attempts).To(Equal(3))
			Expect(registry.Calls("AB12CDE")).To(Equal(3))
		})

		It("rejects archived vehicles and vehicles without a registration", func() {
			for _, id := range []string{archivedVehicle, noRegVehicle} {
				resp, err := serverHelper.RefreshVehicle(id)
				Expect(err).NotTo(HaveOccurred())
				result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusUnprocessableEntity)
				Expect(result.Error).To(Equal(pkgsync.ErrorKindIneligible))
			}
			Expect(registry.TotalCalls()).To(BeZero())
		})

		It("returns 404 for an unknown vehicle id", func() {
			resp, err := serverHelper.RefreshVehicle("00000000-0000-4000-8000-000000000000")
			Expect(err).NotTo(HaveOccurred())
			result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusNotFound)
			Expect(result.Error).To(Equal(pkgsync.ErrorKindVehicleNotFound))
		})
	})

	Context("with a rejected credential", func() {
		BeforeEach(func() {
			startServer("wrong-key")
		})

		It("reports access denied without retrying", func() {
			resp, err := serverHelper.RefreshVehicle(validVehicle)
			Expect(err).NotTo(HaveOccurred())
			result := helpers.DecodeJSON[pkgsync.RefreshResult](resp, http.StatusOK)

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal("access-denied"))
			Expect(result.Attempts).To(Equal(1))
		})
	})
})
