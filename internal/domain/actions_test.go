package domain

import (
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"add", ActionAdd, true},
		{" UPDATE ", ActionUpdate, true},
		{"Delete", ActionDelete, true},
		{"replace", ActionReplace, true},
		{"error", ActionError, true},
		{"merge", ActionError, false},
		{"", ActionError, false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAction(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAge(t *testing.T) {
	birth := mustDate("1990-06-15")
	u := &User{BirthDate: &birth}

	if got := u.Age(mustDate("2026-06-14")); got != 35 {
		t.Errorf("day before birthday: %d, want 35", got)
	}
	if got := u.Age(mustDate("2026-06-15")); got != 36 {
		t.Errorf("on birthday: %d, want 36", got)
	}
	if got := (&User{}).Age(mustDate("2026-06-15")); got != 0 {
		t.Errorf("unknown birth date: %d, want 0", got)
	}
}
