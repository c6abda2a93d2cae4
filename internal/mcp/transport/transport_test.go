package transport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioReadWriteRoundTrip(t *testing.T) {
	logger, _ := test.NewNullLogger()

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out bytes.Buffer
	tr := newStdioTransport(logger, in, &out)
	require.NoError(t, tr.Start(context.Background()))

	msg, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"method":"ping"`)

	require.NoError(t, tr.WriteMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)))
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", out.String())

	// EOF after the single input line
	_, err = tr.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStdioWriteJSONMessage(t *testing.T) {
	logger, _ := test.NewNullLogger()

	var out bytes.Buffer
	tr := newStdioTransport(logger, strings.NewReader(""), &out)

	require.NoError(t, tr.WriteJSONMessage(map[string]string{"status": "ok"}))
	assert.JSONEq(t, `{"status":"ok"}`, strings.TrimSpace(out.String()))
}

func TestStdioClosedTransportRejectsIO(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tr := newStdioTransport(logger, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close(), "double close is a no-op")

	assert.True(t, tr.IsClosed())

	_, err := tr.ReadMessage()
	assert.Error(t, err)
	assert.Error(t, tr.WriteMessage([]byte("x")))
	assert.Error(t, tr.Start(context.Background()))
}

func TestStdioTransportType(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tr := NewStdioTransport(logger)
	assert.Equal(t, "stdio", tr.GetType())
}

func TestManagerAutoDetectFromEnv(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewManager(logger, nil)

	t.Setenv("CARDIO_TRANSPORT", "http-sse")
	detected, err := m.AutoDetectTransport()
	require.NoError(t, err)
	assert.Equal(t, TypeHTTPSSE, detected)

	t.Setenv("CARDIO_TRANSPORT", "stdio")
	detected, err = m.AutoDetectTransport()
	require.NoError(t, err)
	assert.Equal(t, TypeStdio, detected)
}

func TestManagerAutoDetectFromConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()
	t.Setenv("CARDIO_TRANSPORT", "")

	m := NewManager(logger, &Config{Type: "http"})
	detected, err := m.AutoDetectTransport()
	require.NoError(t, err)
	assert.Equal(t, TypeHTTPSSE, detected)
}

func TestManagerCreateTransport(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewManager(logger, &Config{HTTPHost: "127.0.0.1", HTTPPort: 9031})

	tr, err := m.CreateTransport(TypeStdio)
	require.NoError(t, err)
	assert.Equal(t, "stdio", tr.GetType())

	tr, err = m.CreateTransport(TypeHTTPSSE)
	require.NoError(t, err)
	assert.Equal(t, "http-sse", tr.GetType())

	_, err = m.CreateTransport(Type("carrier-pigeon"))
	assert.Error(t, err)
}

func TestManagerShutdown(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := NewManager(logger, nil)

	tr, err := m.CreateTransport(TypeStdio)
	require.NoError(t, err)
	m.transport = tr

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Nil(t, m.GetActiveTransport())
	assert.True(t, tr.IsClosed())
}
