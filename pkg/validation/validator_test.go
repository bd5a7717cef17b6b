package validation

import (
	"errors"
	"strings"
	"testing"
)

type sampleConfig struct {
	Episodes int     `validate:"gte=1"`
	Alpha    float64 `validate:"gt=0,lte=1"`
	Name     string  `validate:"required"`
	Mode     string  `validate:"omitempty,oneof=greedy explore"`
	Low      int     `validate:"gte=0"`
	High     int     `validate:"gtefield=Low"`
}

func TestStruct(t *testing.T) {
	valid := sampleConfig{Episodes: 10, Alpha: 0.5, Name: "run", Low: 1, High: 10}

	tests := []struct {
		name      string
		mutate    func(*sampleConfig)
		wantErr   bool
		errSubstr string
	}{
		{"valid", func(*sampleConfig) {}, false, ""},
		{"episodes below minimum", func(c *sampleConfig) { c.Episodes = 0 }, true, "must be at least 1"},
		{"alpha zero", func(c *sampleConfig) { c.Alpha = 0 }, true, "must be greater than 0"},
		{"alpha above one", func(c *sampleConfig) { c.Alpha = 1.5 }, true, "must not exceed 1"},
		{"missing name", func(c *sampleConfig) { c.Name = "" }, true, "field is required"},
		{"bad mode", func(c *sampleConfig) { c.Mode = "random" }, true, "must be one of [greedy explore]"},
		{"high below low", func(c *sampleConfig) { c.High = 0 }, true, "must be at least Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := Struct(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q should contain %q", err, tt.errSubstr)
			}
		})
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(sampleConfig{})
	if err == nil {
		t.Fatal("expected error for zero config")
	}
	msg := err.Error()
	for _, field := range []string{"Episodes", "Alpha", "Name"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error %q should mention %s", msg, field)
		}
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Struct(nil) = %v, want ErrInvalid", err)
	}
}
