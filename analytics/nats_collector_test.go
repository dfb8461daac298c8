package analytics

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startNATS(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSCollector_Publish(t *testing.T) {
	t.Parallel()

	ns := startNATS(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("test.analytics", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	collector, err := NewNATSCollector(ns.ClientURL(), "test.analytics")
	require.NoError(t, err)
	assert.Equal(t, "nats", collector.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, collector.Send(ctx, ReviewEvent("Comedy", "Airplane!", 5)))

	select {
	case msg := <-msgs:
		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, ReviewEvent("Comedy", "Airplane!", 5), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for analytics event")
	}

	require.NoError(t, collector.Close())
}

func TestNATSCollector_DefaultSubject(t *testing.T) {
	t.Parallel()

	ns := startNATS(t)
	collector, err := NewNATSCollector(ns.ClientURL(), "")
	require.NoError(t, err)
	defer collector.Close()
	assert.Equal(t, "moviereviews.analytics", collector.subject)
}
