package config

import "testing"

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("BCRYPT_COST", "")
		t.Setenv("ADMIN_API_KEY", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("expected port 8080, got %s", cfg.Port)
		}
		if cfg.BcryptCost != defaultBcryptCost {
			t.Errorf("expected cost %d, got %d", defaultBcryptCost, cfg.BcryptCost)
		}
		if cfg.AdminAPIKey != "" {
			t.Errorf("expected empty admin key, got %q", cfg.AdminAPIKey)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("BCRYPT_COST", "10")
		t.Setenv("ADMIN_API_KEY", "ops-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "9090" || cfg.BcryptCost != 10 || cfg.AdminAPIKey != "ops-key" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	for _, cost := range []string{"abc", "2", "99"} {
		t.Run("falls back on bcrypt cost "+cost, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", cost)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.BcryptCost != defaultBcryptCost {
				t.Errorf("expected fallback %d, got %d", defaultBcryptCost, cfg.BcryptCost)
			}
		})
	}
}
