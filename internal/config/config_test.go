package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Parking.FreeParkingRatio != 4 {
		t.Errorf("free parking ratio = %d, want 4", cfg.Parking.FreeParkingRatio)
	}
	if cfg.Parking.Fee != 20000 {
		t.Errorf("fee = %d, want 20000", cfg.Parking.Fee)
	}
	if cfg.Parking.Capacity != 50 {
		t.Errorf("capacity = %d, want 50", cfg.Parking.Capacity)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GATE_PARKING_FEE", "30000")
	t.Setenv("GATE_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Parking.Fee != 30000 {
		t.Errorf("fee = %d, want 30000", cfg.Parking.Fee)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GATE_DATABASE_DRIVER", "oracle")
	if _, err := Load(""); err == nil {
		t.Error("unknown driver accepted")
	}

	t.Setenv("GATE_DATABASE_DRIVER", "memory")
	t.Setenv("GATE_PARKING_FREE_PARKING_RATIO", "0")
	if _, err := Load(""); err == nil {
		t.Error("zero free parking ratio accepted")
	}
}
