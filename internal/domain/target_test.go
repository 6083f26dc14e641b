package domain

import (
	"errors"
	"testing"
)

func TestTargetCredentials(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{"no credentials", Target{Host: "h", Port: 1}, ""},
		{"user only", Target{Host: "h", Port: 1, Username: "u"}, "u"},
		{"user and password", Target{Host: "h", Port: 1, Username: "u", Password: "p"}, "u:p"},
		{"password without user", Target{Host: "h", Port: 1, Password: "p"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.Credentials(); got != tt.want {
				t.Errorf("Credentials() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetEquality(t *testing.T) {
	a := Target{Host: "tp", Port: 5010, Username: "u", Password: "p"}
	b := Target{Host: "tp", Port: 5010, Username: "u", Password: "p"}
	c := Target{Host: "tp", Port: 5010, Username: "u", Password: "other"}

	if a != b {
		t.Error("targets with identical fields should be equal")
	}
	if a == c {
		t.Error("targets with different passwords should not be equal")
	}

	m := map[Target]int{a: 1}
	if m[b] != 1 {
		t.Error("equal targets should address the same map entry")
	}
}

func TestTargetStringHidesPassword(t *testing.T) {
	tg := Target{Host: "tp", Port: 5010, Username: "u", Password: "secret"}
	if got := tg.String(); got != "u@tp:5010" {
		t.Errorf("String() = %q, want %q", got, "u@tp:5010")
	}
	if got := NewTarget("tp", 5011).String(); got != "tp:5011" {
		t.Errorf("String() = %q, want %q", got, "tp:5011")
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "tp:5010", want: Target{Host: "tp", Port: 5010}},
		{in: "u@tp:5010", want: Target{Host: "tp", Port: 5010, Username: "u"}},
		{in: "u:p@tp:5010", want: Target{Host: "tp", Port: 5010, Username: "u", Password: "p"}},
		{in: "u:p@ss@tp:5010", want: Target{Host: "tp", Port: 5010, Username: "u", Password: "p@ss"}},
		{in: "[::1]:5010", want: Target{Host: "::1", Port: 5010}},
		{in: "tp", wantErr: true},
		{in: ":5010", wantErr: true},
		{in: "tp:0", wantErr: true},
		{in: "tp:port", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("ParseTarget(%q) error = %v, want ErrInvalidArgument", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
