package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestSampleSavedPublishesKeyedByDataType(t *testing.T) {
	w := &stubWriter{}
	p := &Publisher{writer: w}

	savedAt := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	ev := SampleSaved{
		RecordID:  "rec-1",
		DataType:  "steps",
		Value:     500,
		Unit:      "count",
		StartDate: savedAt.Add(-time.Hour),
		EndDate:   savedAt.Add(-time.Hour),
		SourceID:  "example.healthbridge",
		SavedAt:   savedAt,
	}
	require.NoError(t, p.SampleSaved(context.Background(), ev))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	require.Equal(t, "steps", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, "sample.saved", string(msg.Headers[0].Value))

	var decoded SampleSaved
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, ev.RecordID, decoded.RecordID)
	require.Equal(t, ev.Value, decoded.Value)
	require.True(t, decoded.SavedAt.Equal(savedAt))
}

func TestSampleSavedPropagatesWriteError(t *testing.T) {
	w := &stubWriter{writeErr: errors.New("broker down")}
	p := &Publisher{writer: w}

	err := p.SampleSaved(context.Background(), SampleSaved{DataType: "steps"})
	require.Error(t, err)
	require.Empty(t, w.messages)
}

func TestCloseReleasesWriter(t *testing.T) {
	w := &stubWriter{}
	p := &Publisher{writer: w}
	require.NoError(t, p.Close())
	require.True(t, w.closed)
}
