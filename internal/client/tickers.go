package client

import (
	"fmt"
	"os"
	"strings"
)

// LoadTickers reads a newline-delimited ticker list from path: upper-cased,
// whitespace-trimmed, empty lines dropped, duplicates removed while
// preserving first-seen order. Unlike the server's
// protocol.LoadKnownTickers, the client has no built-in default list — a
// tickers file is always required.
func LoadTickers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers file %q: %w", path, err)
	}

	seen := make(map[string]struct{})
	var tickers []string
	for _, line := range strings.Split(string(data), "\n") {
		t := strings.ToUpper(strings.TrimSpace(line))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("tickers file %q contains no tickers", path)
	}
	return tickers, nil
}
