package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseInlineVars(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Vars
		wantErr bool
	}{
		{name: "empty", in: "  ", want: Vars{}},
		{name: "single", in: "A=1", want: Vars{"A": "1"}},
		{name: "several with spaces", in: " A = 1 , B=2,", want: Vars{"A": "1", "B": "2"}},
		{name: "value with equals", in: "URL=http://x?a=b", want: Vars{"URL": "http://x?a=b"}},
		{name: "empty value", in: "A=", want: Vars{"A": ""}},
		{name: "missing equals", in: "A", wantErr: true},
		{name: "empty key", in: "=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInlineVars(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVar) {
					t.Errorf("expected ErrInvalidVar, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: expected %q, got %q", k, v, got[k])
				}
			}
		})
	}
}

func TestMerge(t *testing.T) {
	got := Merge(Vars{"A": "1", "B": "1"}, nil, Vars{"B": "2"})

	if got["A"] != "1" || got["B"] != "2" {
		t.Errorf("unexpected merge result: %v", got)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.env")
	second := filepath.Join(dir, "b.env")

	if err := os.WriteFile(first, []byte("# comment\nBUCKET=demo\nREGION=us-east-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("REGION=\"eu-west-1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadEnvFiles([]string{first, "", second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["BUCKET"] != "demo" {
		t.Errorf("expected BUCKET=demo, got %q", got["BUCKET"])
	}
	if got["REGION"] != "eu-west-1" {
		t.Errorf("expected later file to win, got %q", got["REGION"])
	}
}

func TestLoadEnvFiles_Missing(t *testing.T) {
	if _, err := LoadEnvFiles([]string{filepath.Join(t.TempDir(), "nope.env")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnvironment_Precedence(t *testing.T) {
	t.Setenv("INVOKER_TEST_NAME", "process")
	t.Setenv("INVOKER_TEST_ONLY_OS", "os")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("INVOKER_TEST_NAME=file\nINVOKER_TEST_FILE=yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	vars, err := Environment([]string{path}, "INVOKER_TEST_FILE=inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lookup := vars.Lookup()
	tests := map[string]string{
		"INVOKER_TEST_NAME":    "file",
		"INVOKER_TEST_FILE":    "inline",
		"INVOKER_TEST_ONLY_OS": "os",
	}
	for name, want := range tests {
		got, ok := lookup(name)
		if !ok || got != want {
			t.Errorf("%s: expected %q, got %q (%v)", name, want, got, ok)
		}
	}
	if _, ok := lookup("INVOKER_TEST_UNDEFINED"); ok {
		t.Error("undefined variable should not be found")
	}
	if os.Getenv("INVOKER_TEST_FILE") != "" {
		t.Error("process environment should not be modified")
	}
}
