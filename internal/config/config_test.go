package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Load()

	if cfg.App.Name != "clinic-api" || cfg.App.Port != "8080" {
		t.Errorf("unexpected app config %+v", cfg.App)
	}
	if cfg.App.IsProduction() {
		t.Error("default env should not be production")
	}
	if cfg.JWT.ExpiryHours != 24*time.Hour || cfg.JWT.RefreshExpiryHours != 168*time.Hour {
		t.Errorf("unexpected jwt config %+v", cfg.JWT)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.DashboardTTL != time.Minute {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Reminder.Schedule != "*/15 * * * *" || cfg.Reminder.LeadHours != 24 {
		t.Errorf("unexpected reminder config %+v", cfg.Reminder)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.CORS.AllowedHeaders) != 0 {
		t.Errorf("headers = %v", cfg.CORS.AllowedHeaders)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_NAME", "westlands")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DASHBOARD_CACHE_SECONDS", "300")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("TWILIO_FROM_NUMBER", "+15005550006")

	cfg := Load()

	if !cfg.App.IsProduction() {
		t.Error("expected production")
	}
	if cfg.Database.Name != "westlands" {
		t.Errorf("db name = %q", cfg.Database.Name)
	}
	if got := cfg.CORS.AllowedOrigins; len(got) != 2 || got[1] != "https://b.test" {
		t.Errorf("origins = %v", got)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DashboardTTL != 5*time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if !cfg.SMS.Enabled || cfg.SMS.FromNumber != "+15005550006" {
		t.Errorf("sms = %+v", cfg.SMS)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", Name: "clinic", User: "app",
		Password: "pw", SSLMode: "disable", Timezone: "UTC",
	}
	want := "host=db user=app password=pw dbname=clinic port=5432 sslmode=disable TimeZone=UTC"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
