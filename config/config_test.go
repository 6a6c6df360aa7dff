package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validEnvironment() map[string]string {
	return map[string]string{
		"PAYPAL_API_USERNAME":       "api-user",
		"PAYPAL_API_PASSWORD":       "api-pass",
		"PAYPAL_API_SIGNATURE":      "api-sig",
		"PAYPAL_API_APPLICATION_ID": "APP-80W284485P519543T",
		"PAYPAL_PLATFORM_EMAIL":     "payments@platform.example.com",
		"CALLBACK_BASE_URL":         "shop.example.com",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(validEnvironment())

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.True(t, cfg.PayPal.SandboxMode)
	require.Equal(t, "GBP", cfg.PayPal.Currency)
	require.Equal(t, "EACHRECEIVER", cfg.PayPal.FeesPayer)
	require.Equal(t, 30*time.Second, cfg.PayPal.Timeout)
	require.False(t, cfg.PayPal.Itemize)
	require.True(t, cfg.Checkout.CallbackHTTPS)
	require.Equal(t, 1, cfg.Checkout.BankFeePosition)
	require.Equal(t, 2, cfg.Checkout.InsuranceFeePosition)
	require.Equal(t, time.Hour, cfg.Checkout.SessionTTL)
	require.Equal(t, "account", cfg.Checkout.PayerValidation)
	require.Equal(t, "chained", cfg.Checkout.SplitStrategy)
	require.Equal(t, "checkout.settled", cfg.Kafka.SettlementTopic)
	require.Empty(t, cfg.Kafka.Brokers)
	require.Empty(t, cfg.Postgres.DSN)
	require.Equal(t, "development", cfg.Log.Env)
}

func TestLoadFrom_Overrides(t *testing.T) {
	environment := validEnvironment()
	environment["PAYPAL_SANDBOX_MODE"] = "false"
	environment["PAYPAL_TIMEOUT"] = "5s"
	environment["SPLIT_STRATEGY"] = "single"
	environment["PAYER_VALIDATION"] = "none"
	environment["KAFKA_BROKERS"] = "kafka-1:9092,kafka-2:9092"
	environment["REDIS_DB"] = "3"

	cfg, err := LoadFrom(environment)

	require.NoError(t, err)
	require.False(t, cfg.PayPal.SandboxMode)
	require.Equal(t, 5*time.Second, cfg.PayPal.Timeout)
	require.Equal(t, "single", cfg.Checkout.SplitStrategy)
	require.Equal(t, "none", cfg.Checkout.PayerValidation)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		change  func(map[string]string)
		message string
	}{
		{"missing credentials", func(e map[string]string) { delete(e, "PAYPAL_API_SIGNATURE") }, "PAYPAL_API_SIGNATURE is required"},
		{"missing platform email", func(e map[string]string) { delete(e, "PAYPAL_PLATFORM_EMAIL") }, "PAYPAL_PLATFORM_EMAIL is required"},
		{"bad currency", func(e map[string]string) { e["PAYPAL_CURRENCY"] = "POUND" }, "PAYPAL_CURRENCY"},
		{"bad payer validation", func(e map[string]string) { e["PAYER_VALIDATION"] = "email" }, "PAYER_VALIDATION"},
		{"bad split strategy", func(e map[string]string) { e["SPLIT_STRATEGY"] = "parallel" }, "SPLIT_STRATEGY"},
		{"same fee positions", func(e map[string]string) { e["INSURANCE_FEE_POSITION"] = "1" }, "must differ"},
		{"unparsable duration", func(e map[string]string) { e["SESSION_TTL"] = "forever" }, "SessionTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environment := validEnvironment()
			tt.change(environment)

			_, err := LoadFrom(environment)

			require.ErrorContains(t, err, tt.message)
		})
	}
}
