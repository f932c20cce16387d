package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/nyumbani/rental-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	SendgridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string

	MpesaConsumerKey    string
	MpesaConsumerSecret string
	MpesaShortCode      string
	MpesaPasskey        string
	MpesaCallbackURL    string
	MpesaSandboxMode    bool

	LDFlag_SendgridFromEmail       string
	LDFlag_SendgridSandboxMode     bool
	LDFlag_ValidatePhoneWithTwilio bool
	LDFlag_CORSHighSecurity        bool
	LDFlag_SeedDbWithTestData      bool
}

const (
	OrganizationName    = "Nyumbani"
	AppName             = "rental-service"
	LDConnectionTimeout = 5 * time.Second

	defaultFromEmail = "no-reply@nyumbani.co.ke"
)

// LoadConfig reads the environment (optionally primed from a .env
// file), parses the RSA keypair used for tokens and resolves feature
// flags from LaunchDarkly when an SDK key is present. Missing required
// values are fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found, relying on environment")
	}

	cfg := &Config{
		OrganizationName: OrganizationName,
		AppName:          AppName,
		AppPort:          getEnvDefault("APP_PORT", "8080"),
		AppUrl:           mustEnv("APP_URL"),
		DBUrl:            mustEnv("DB_URL"),

		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),

		MpesaConsumerKey:    mustEnv("MPESA_CONSUMER_KEY"),
		MpesaConsumerSecret: mustEnv("MPESA_CONSUMER_SECRET"),
		MpesaShortCode:      mustEnv("MPESA_SHORTCODE"),
		MpesaPasskey:        mustEnv("MPESA_PASSKEY"),
		MpesaSandboxMode:    boolEnv("MPESA_SANDBOX_MODE", true),
	}

	cfg.MpesaCallbackURL = os.Getenv("MPESA_CALLBACK_URL")
	if cfg.MpesaCallbackURL == "" {
		cfg.MpesaCallbackURL = cfg.AppUrl + "/api/v1/payments/mpesa/callback/"
	}

	cfg.RSAPrivateKey, cfg.RSAPublicKey = loadRSAKeys()
	loadFlags(cfg)

	return cfg
}

func loadRSAKeys() (*rsa.PrivateKey, *rsa.PublicKey) {
	privPEM, err := base64.StdEncoding.DecodeString(mustEnv("RSA_PRIVATE_KEY_BASE64"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PRIVATE_KEY_BASE64 is not valid base64")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	pubPEM, err := base64.StdEncoding.DecodeString(mustEnv("RSA_PUBLIC_KEY_BASE64"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	return privKey, pubKey
}

// loadFlags resolves runtime flags. With no LD_SDK_KEY the env-var
// fallbacks apply, which is how local development runs.
func loadFlags(cfg *Config) {
	cfg.LDFlag_SendgridFromEmail = getEnvDefault("SENDGRID_FROM_EMAIL", defaultFromEmail)
	cfg.LDFlag_SendgridSandboxMode = boolEnv("SENDGRID_SANDBOX_MODE", false)
	cfg.LDFlag_ValidatePhoneWithTwilio = boolEnv("VALIDATE_PHONE_WITH_TWILIO", false)
	cfg.LDFlag_CORSHighSecurity = boolEnv("CORS_HIGH_SECURITY", false)
	cfg.LDFlag_SeedDbWithTestData = boolEnv("SEED_DB_WITH_TEST_DATA", false)

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		return
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	ctx := ldcontext.New(AppName)

	if v, err := ldClient.StringVariation("sendgrid_from_email", ctx, cfg.LDFlag_SendgridFromEmail); err == nil && v != "" {
		cfg.LDFlag_SendgridFromEmail = v
	}
	if v, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, cfg.LDFlag_SendgridSandboxMode); err == nil {
		cfg.LDFlag_SendgridSandboxMode = v
	}
	if v, err := ldClient.BoolVariation("validate_phone_with_twilio", ctx, cfg.LDFlag_ValidatePhoneWithTwilio); err == nil {
		cfg.LDFlag_ValidatePhoneWithTwilio = v
	}
	if v, err := ldClient.BoolVariation("cors_high_security", ctx, cfg.LDFlag_CORSHighSecurity); err == nil {
		cfg.LDFlag_CORSHighSecurity = v
	}
	if v, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, cfg.LDFlag_SeedDbWithTestData); err == nil {
		cfg.LDFlag_SeedDbWithTestData = v
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		utils.Logger.Fatalf("%s env var is not a bool: %q", key, v)
	}
	return b
}
