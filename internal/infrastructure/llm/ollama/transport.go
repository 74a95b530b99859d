package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
	"github.com/kirillkom/regulation-assistant/internal/infrastructure/resilience"
)

const serviceName = "ollama"

// call posts payload through the resilience executor when one is configured
// and maps the final failure onto a domain error kind.
func (c *Client) call(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	do := func(ctx context.Context) error {
		return c.postJSON(ctx, path, body, out, operation)
	}
	if c.executor != nil {
		err = c.executor.Execute(ctx, serviceName+"."+operation, do, resilience.ClassifyHTTP)
	} else {
		err = do(ctx)
	}
	if err != nil {
		if domain.IsKind(err, domain.ErrMalformedResponse) {
			return err
		}
		return resilience.WrapUpstream(serviceName+" "+operation, err, resilience.ClassifyHTTP)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resilience.NewHTTPStatusError(serviceName, operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrMalformedResponse, "decode "+operation+" response", err)
	}
	return nil
}
