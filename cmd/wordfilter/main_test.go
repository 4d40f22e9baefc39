package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestGroupByLength(t *testing.T) {
	in := "damped level Kiosk trust abcda a1b2a\nelapse stars"
	got, err := groupByLength(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int][]string{
		5: {"Kiosk", "trust", "abcda", "stars"},
		6: {"damped", "elapse"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groupByLength = %v, want %v", got, want)
	}
}

func TestRootCmdWritesFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.txt")
	if err := os.WriteFile(in, []byte("damped trust deed elapse\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--out", dir, in, "_words.txt"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for name, want := range map[string]string{
		"5_words.txt": "trust\n",
		"6_words.txt": "damped\nelapse\n",
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(b) != want {
			t.Errorf("%s = %q, want %q", name, b, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "4_words.txt")); !os.IsNotExist(err) {
		t.Error("unexpected 4_words.txt")
	}
}

func TestRootCmdArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"only-one"})
	cmd.SilenceErrors, cmd.SilenceUsage = true, true
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}
