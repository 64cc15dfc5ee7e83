package eventbus

import "testing"

func TestDisabledBusPublishIsNoOp(t *testing.T) {
	b := Disabled()
	// Must not panic even though there is no underlying connection.
	b.PublishJSON(SubjectClientSubscribed, ClientSubscribedEvent{RemoteAddr: "127.0.0.1:9999"})
	b.Close()
}

func TestDisabledBusPublishWithNilMetricsIsSafe(t *testing.T) {
	b := Disabled()
	b.PublishJSON(SubjectGeneratorTick, GeneratorTickEvent{QuoteCount: 10})
}
