package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Tree(t *testing.T) {
	out, err := runCLI(t, `{"id": 7, "tags": ["a"]}`, "-")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"List (2)", "Symbol :id", "Number 7", `CharList "a"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Roundtrip(t *testing.T) {
	out, err := runCLI(t, "name: x\nn: 3\nok: true\n", "--format", "yaml", "--roundtrip", "-")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "n: 3\nname: x\nok: true\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRun_SnapshotSaveLoad(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, "doc.json", `{"list": [1, 2, 3]}`)
	snap := filepath.Join(dir, "doc.snap")

	first, err := runCLI(t, "", "--save", snap, input)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	second, err := runCLI(t, "", "--load", snap)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if first != second {
		t.Errorf("loaded tree differs\nsaved:\n%s\nloaded:\n%s", first, second)
	}

	leaf, err := runCLI(t, "", "--load", snap, "--root", "1")
	if err != nil {
		t.Fatalf("load root 1: %v", err)
	}
	if !strings.HasPrefix(leaf, "#1 True") {
		t.Errorf("root 1 = %q", leaf)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "heapview.yaml", "optional: symbol\n")
	if _, err := runCLI(t, "[null]", "--config", cfg, "-"); err != nil {
		t.Fatalf("run: %v", err)
	}

	bad := writeFile(t, "bad.yaml", "variants: sideways\n")
	if _, err := runCLI(t, "[]", "--config", bad, "-"); err == nil {
		t.Error("expected error for invalid variant naming")
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"no input", "", nil},
		{"two inputs", "", []string{"a.json", "b.json"}},
		{"bad json", "{", []string{"-"}},
		{"unknown format", "{}", []string{"--format", "toml", "-"}},
		{"root out of range", "{}", []string{"--root", "500", "-"}},
		{"missing snapshot", "", []string{"--load", "/nonexistent/heap.snap"}},
		{"unknown flag", "", []string{"--colour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.stdin, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--help"}, strings.NewReader(""), &stdout, &stderr)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("err = %v, want ErrHelp", err)
	}
	if !strings.Contains(stderr.String(), "--struct-typing") {
		t.Errorf("help output:\n%s", stderr.String())
	}
}

func TestSelectRoot(t *testing.T) {
	tests := []struct {
		root, n int
		want    uint32
		wantErr bool
	}{
		{-1, 5, 4, false},
		{0, 5, 0, false},
		{5, 5, 0, true},
		{-1, 0, 0, true},
	}
	for _, tt := range tests {
		got, err := selectRoot(tt.root, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("selectRoot(%d, %d) err = %v", tt.root, tt.n, err)
			continue
		}
		if !tt.wantErr && uint32(got) != tt.want {
			t.Errorf("selectRoot(%d, %d) = %d, want %d", tt.root, tt.n, got, tt.want)
		}
	}
}
