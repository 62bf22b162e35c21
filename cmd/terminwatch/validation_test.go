package main

import (
	"strings"
	"testing"
)

func TestRequireAtMostOne(t *testing.T) {
	tests := []struct {
		name    string
		flags   []flagSet
		wantErr bool
	}{
		{"none set", []flagSet{{"--no-notify", false}, {"--webhook", false}}, false},
		{"one set", []flagSet{{"--no-notify", true}, {"--webhook", false}}, false},
		{"both set", []flagSet{{"--no-notify", true}, {"--webhook", true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireAtMostOne(tt.flags...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "--no-notify and --webhook") {
					t.Errorf("error = %q, want both flag names", err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders([]string{"X-Token: secret", "Content-Type:application/json", "malformed", "X-Url: https://a:b"})

	want := map[string]string{
		"X-Token":      "secret",
		"Content-Type": "application/json",
		"X-Url":        "https://a:b",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d headers, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("header %q = %q, want %q", k, got[k], v)
		}
	}
}
