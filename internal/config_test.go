package internal_test

import (
	"time"

	"github.com/frahmantamala/drive-sharing/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, *",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			Source:       "file::memory:?cache=shared",
		},
		Security: internal.SecurityConfig{
			AccessTokenSecret:    "0123456789abcdef0123456789abcdef",
			RefreshTokenSecret:   "fedcba9876543210fedcba9876543210",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			BCryptCost:           10,
		},
	}
}

var _ = Describe("Config", func() {
	It("fills in the default driver and store", func() {
		cfg := validConfig()

		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverPostgres))
		Expect(cfg.Sharing.Store).To(Equal(internal.StoreDatabase))
	})

	It("accepts the sqlite driver with the in-memory store", func() {
		cfg := validConfig()
		cfg.Database.Driver = internal.DriverSQLite
		cfg.Sharing.Store = internal.StoreMemory
		cfg.Sharing.SimulatedLatency = 20 * time.Millisecond

		Expect(cfg.Validate()).To(Succeed())
	})

	It("rejects an unknown driver and store", func() {
		cfg := validConfig()
		cfg.Database.Driver = "mysql"
		cfg.Sharing.Store = "redis"

		err := cfg.Validate()

		Expect(err).To(MatchError(ContainSubstring(`unsupported driver "mysql"`)))
		Expect(err).To(MatchError(ContainSubstring(`unsupported store "redis"`)))
	})

	It("requires a database source", func() {
		cfg := validConfig()
		cfg.Database.Source = ""

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("source is required")))
	})

	It("rejects more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 20

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("rejects short token secrets", func() {
		cfg := validConfig()
		cfg.Security.AccessTokenSecret = "short"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("access_token_secret must be at least 32 characters")))
	})

	It("requires refresh tokens to outlive access tokens", func() {
		cfg := validConfig()
		cfg.Security.RefreshTokenDuration = cfg.Security.AccessTokenDuration

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("refresh_token_duration must be longer")))
	})

	It("rejects a negative simulated latency", func() {
		cfg := validConfig()
		cfg.Sharing.SimulatedLatency = -time.Millisecond

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("simulated_latency cannot be negative")))
	})

	It("rejects a read timeout shorter than the header timeout", func() {
		cfg := validConfig()
		cfg.Server.ReadTimeout = time.Second

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("read_timeout")))
	})

	It("rejects unknown log settings", func() {
		cfg := validConfig()
		cfg.Observability.Logging.Level = "trace"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring(`unsupported log level "trace"`)))
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads the sharing settings", func() {
			GinkgoT().Setenv("SHARING_STORE", "memory")
			GinkgoT().Setenv("SHARING_SIMULATED_LATENCY", "20ms")
			GinkgoT().Setenv("DB_DRIVER", "sqlite")
			GinkgoT().Setenv("HTTP_PORT", "not-a-number")

			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.Sharing.Store).To(Equal(internal.StoreMemory))
			Expect(cfg.Sharing.SimulatedLatency).To(Equal(20 * time.Millisecond))
			Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
			Expect(cfg.Server.Port).To(Equal(8080))
		})
	})
})
