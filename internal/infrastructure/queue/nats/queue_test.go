package nats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

func testQueue(buf *bytes.Buffer) *Queue {
	return &Queue{
		logger:         slog.New(slog.NewTextHandler(buf, nil)),
		handlerTimeout: time.Second,
	}
}

func TestHandleDecodesEventAndBoundsHandler(t *testing.T) {
	var logs bytes.Buffer
	q := testQueue(&logs)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	data, err := encodeRecord(domain.QuestionRecord{
		ID: "q1", UserID: "u1", Question: "Burs başvurusu?", Answer: "Ekimde.",
		Topic: "burs", Outcome: domain.OutcomeAnswered, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("encodeRecord() error = %v", err)
	}

	var got domain.QuestionRecord
	var hadDeadline bool
	q.handle(context.Background(), data, func(ctx context.Context, record domain.QuestionRecord) error {
		_, hadDeadline = ctx.Deadline()
		got = record
		return nil
	})
	if got.ID != "q1" || got.Topic != "burs" || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected record %+v", got)
	}
	if !hadDeadline {
		t.Fatalf("handler context must carry a deadline")
	}
}

func TestHandleLogsInvalidAndFailedEvents(t *testing.T) {
	var logs bytes.Buffer
	q := testQueue(&logs)
	called := false
	q.handle(context.Background(), []byte("{"), func(context.Context, domain.QuestionRecord) error {
		called = true
		return nil
	})
	if called || !strings.Contains(logs.String(), "question_event_invalid") {
		t.Fatalf("invalid event must be logged and skipped, logs=%s", logs.String())
	}

	data, _ := encodeRecord(domain.QuestionRecord{ID: "q2", Question: "x"})
	q.handle(context.Background(), data, func(context.Context, domain.QuestionRecord) error {
		return errors.New("db down")
	})
	if !strings.Contains(logs.String(), "question_event_failed") {
		t.Fatalf("handler failure must be logged, logs=%s", logs.String())
	}
}

func TestDecodeRecordRejectsEmptyQuestion(t *testing.T) {
	_, err := decodeRecord([]byte(`{"id":"q1"}`))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestClassifyNATSError(t *testing.T) {
	if c := classifyNATSError(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed)); !c.Retryable {
		t.Fatalf("closed connection must be retryable")
	}
	if c := classifyNATSError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("cancellation must be ignored, got %+v", c)
	}
	if c := classifyNATSError(nats.ErrMaxPayload); c.Retryable {
		t.Fatalf("payload errors must not be retried")
	}
	if err := resilience.WrapUpstream("nats publish", nats.ErrTimeout, classifyNATSError); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary kind, got %v", err)
	}
}
