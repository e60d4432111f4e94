package schema

import (
	"testing"
)

func TestValidatePowerRequest_Valid(t *testing.T) {
	v := NewValidator()

	for _, cmd := range []string{"power_on", "standby"} {
		err := v.Validate(PowerRequest, map[string]any{"command": cmd})
		if err != nil {
			t.Errorf("expected %q to validate, got: %v", cmd, err)
		}
	}
}

func TestValidatePowerRequest_InvalidCommand(t *testing.T) {
	v := NewValidator()

	err := v.Validate(PowerRequest, map[string]any{"command": "reboot"})
	if err == nil {
		t.Error("expected validation error for unknown command")
	}
}

func TestValidatePowerRequest_MissingCommand(t *testing.T) {
	v := NewValidator()

	err := v.Validate(PowerRequest, map[string]any{})
	if err == nil {
		t.Error("expected validation error for missing command")
	}
}

func TestValidatePowerRequest_UnknownProperty(t *testing.T) {
	v := NewValidator()

	err := v.Validate(PowerRequest, map[string]any{
		"command": "power_on",
		"force":   true,
	})
	if err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidateRegistrationRequest(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(RegistrationRequest, map[string]any{"enabled": true}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
	if err := v.Validate(RegistrationRequest, map[string]any{"enabled": "yes"}); err == nil {
		t.Error("expected validation error for non-boolean enabled")
	}
	if err := v.Validate(RegistrationRequest, map[string]any{}); err == nil {
		t.Error("expected validation error for missing enabled")
	}
}

func TestValidateSettingsPatch_PartialUpdate(t *testing.T) {
	v := NewValidator()

	err := v.Validate(SettingsPatch, map[string]any{
		"scan_window_ms": float64(8000),
	})
	if err != nil {
		t.Errorf("expected partial patch to validate, got: %v", err)
	}

	err = v.Validate(SettingsPatch, map[string]any{})
	if err != nil {
		t.Errorf("expected empty patch to validate, got: %v", err)
	}
}

func TestValidateSettingsPatch_OutOfRange(t *testing.T) {
	v := NewValidator()

	cases := map[string]any{
		"api_port":         float64(0),
		"scan_window_ms":   float64(100),
		"connect_attempts": float64(11),
		"backoff_base_ms":  float64(10),
		"call_budget_ms":   float64(1000),
	}
	for field, value := range cases {
		if err := v.Validate(SettingsPatch, map[string]any{field: value}); err == nil {
			t.Errorf("expected %s=%v to be rejected", field, value)
		}
	}
}

func TestValidateSettingsPatch_InvalidTheme(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(SettingsPatch, map[string]any{"theme": "solarized"}); err == nil {
		t.Error("expected validation error for unknown theme")
	}
}

func TestValidateSettingsPatch_UnknownProperty(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(SettingsPatch, map[string]any{"verbosity": float64(3)}); err == nil {
		t.Error("expected validation error for unknown property")
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	// First call compiles
	if err := v.Validate(PowerRequest, map[string]any{"command": "power_on"}); err != nil {
		t.Fatal(err)
	}

	// Second call should use cache
	if err := v.Validate(PowerRequest, map[string]any{"command": "standby"}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}
