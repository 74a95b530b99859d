package bootstrap

import (
	"context"
	"time"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

// deadlineAnswerer bounds every pipeline run. Chat, HTTP and MCP callers all
// go through it.
type deadlineAnswerer struct {
	next    ports.QuestionAnswerer
	timeout time.Duration
}

func withDeadline(next ports.QuestionAnswerer, timeout time.Duration) ports.QuestionAnswerer {
	if timeout <= 0 {
		return next
	}
	return deadlineAnswerer{next: next, timeout: timeout}
}

func (d deadlineAnswerer) ProcessQuery(ctx context.Context, text string) domain.Answer {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.ProcessQuery(ctx, text)
}
