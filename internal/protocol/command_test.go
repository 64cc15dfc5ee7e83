package protocol

import "testing"

func known(tickers ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		set[t] = struct{}{}
	}
	return set
}

func TestParseCommandValid(t *testing.T) {
	cmd, err := ParseCommand("STREAM udp://127.0.0.1:34254 AAPL,TSLA\n", known("AAPL", "TSLA", "MSFT"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cmd.UDPAddr.String(), "127.0.0.1:34254"; got != want {
		t.Errorf("udp addr = %q, want %q", got, want)
	}
	if len(cmd.Tickers) != 2 || cmd.Tickers[0] != "AAPL" || cmd.Tickers[1] != "TSLA" {
		t.Errorf("tickers = %v", cmd.Tickers)
	}
}

func TestParseCommandDedupPreservesOrder(t *testing.T) {
	cmd, err := ParseCommand("STREAM udp://127.0.0.1:5000 tsla,AAPL,TSLA\n", known("AAPL", "TSLA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"TSLA", "AAPL"}
	if len(cmd.Tickers) != len(want) {
		t.Fatalf("tickers = %v, want %v", cmd.Tickers, want)
	}
	for i := range want {
		if cmd.Tickers[i] != want[i] {
			t.Errorf("tickers[%d] = %q, want %q", i, cmd.Tickers[i], want[i])
		}
	}
}

func TestParseCommandUnknownTicker(t *testing.T) {
	_, err := ParseCommand("STREAM udp://127.0.0.1:5000 AAPL,FAKE\n", known("AAPL"))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "unknown ticker: FAKE" {
		t.Errorf("error = %q", got)
	}
}

func TestParseCommandMissingPrefix(t *testing.T) {
	_, err := ParseCommand("SUBSCRIBE udp://127.0.0.1:5000 AAPL\n", known("AAPL"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseCommandBadAddress(t *testing.T) {
	_, err := ParseCommand("STREAM tcp://127.0.0.1:5000 AAPL\n", known("AAPL"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseCommandEmptyTickers(t *testing.T) {
	_, err := ParseCommand("STREAM udp://127.0.0.1:5000 \n", known("AAPL"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseCommandIncomplete(t *testing.T) {
	_, err := ParseCommand("STREAM udp://127.0.0.1:5000\n", known("AAPL"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRoundTrip(t *testing.T) {
	line := "STREAM udp://127.0.0.1:34254 AAPL,TSLA\n"
	cmd, err := ParseCommand(line, known("AAPL", "TSLA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Serialize(cmd); got != line {
		t.Errorf("Serialize(Parse(line)) = %q, want %q", got, line)
	}
}

func TestIsPingPayload(t *testing.T) {
	if !IsPingPayload([]byte("PING")) {
		t.Error("expected PING to match")
	}
	if IsPingPayload([]byte("PONG")) {
		t.Error("expected PONG not to match")
	}
	if IsPingPayload([]byte("PIN")) {
		t.Error("expected short payload not to match")
	}
}
