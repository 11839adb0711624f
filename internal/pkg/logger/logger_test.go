package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpipe/internal/pkg/config"
)

func TestConsoleOutputIsTheBareMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Level: "info", Format: "console"}, &buf)

	l.Info().
		Str(FieldStage, "Gerador").
		Str(FieldEvent, "order_created").
		Int64(FieldOrderID, 1).
		Str(FieldProduct, "Notebook").
		Msg("[Gerador] Pedido criado: 1 - Notebook")
	l.Debug().Msg("hidden at info level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "[Gerador] Pedido criado: 1 - Notebook", strings.TrimSpace(lines[0]))
}

func TestJSONOutputKeepsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Level: "debug", Format: "json"}, &buf)

	l.Debug().Str(FieldStage, "Processador").Int64(FieldOrderID, 7).Msg("processing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Processador", entry[FieldStage])
	assert.EqualValues(t, 7, entry[FieldOrderID])
	assert.Equal(t, "debug", entry["level"])
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Level: "loud", Format: "json"}, &buf)

	l.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Format: "json"}, &buf)

	ctx := WithContext(context.Background(), l)
	Ctx(ctx).Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}
