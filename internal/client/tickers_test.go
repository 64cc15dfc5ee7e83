package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTickersDedupsAndUppercases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.txt")
	if err := os.WriteFile(path, []byte("aapl\nTSLA\n\naapl\n  msft  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadTickers(path)
	if err != nil {
		t.Fatalf("LoadTickers: %v", err)
	}
	want := []string{"AAPL", "TSLA", "MSFT"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadTickersErrorsOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadTickers(path); err == nil {
		t.Fatal("expected error for empty tickers file")
	}
}

func TestLoadTickersErrorsOnMissingFile(t *testing.T) {
	if _, err := LoadTickers(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
