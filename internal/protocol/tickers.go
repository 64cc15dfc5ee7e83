package protocol

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// defaultTickersRaw is the built-in known-ticker list, embedded at build
// time the way the original implementation embeds tickers.txt with
// include_str!.
//
//go:embed tickers.txt
var defaultTickersRaw string

// LoadKnownTickers returns the known-ticker set. If path is empty, the
// embedded default list is used; otherwise tickers are read from path, one
// per line, whitespace-trimmed with empty lines dropped. The returned slice
// preserves file order; the returned set is for O(1) membership checks.
func LoadKnownTickers(path string) (tickers []string, set map[string]struct{}, err error) {
	raw := defaultTickersRaw
	if path != "" {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, nil, fmt.Errorf("read known tickers file %q: %w", path, readErr)
		}
		raw = string(data)
	}

	set = make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		t := strings.ToUpper(strings.TrimSpace(line))
		if t == "" {
			continue
		}
		if _, ok := set[t]; ok {
			continue
		}
		set[t] = struct{}{}
		tickers = append(tickers, t)
	}

	if len(tickers) == 0 {
		return nil, nil, fmt.Errorf("known ticker list is empty")
	}

	return tickers, set, nil
}
