package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resource2code/internal/command"
)

type wireResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Kind   command.Kind    `json:"kind"`
}

// HTTPInvoker calls a remote gateway. One Invoke is one round trip.
type HTTPInvoker struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPInvoker(baseURL string, timeout time.Duration) *HTTPInvoker {
	return &HTTPInvoker{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (i *HTTPInvoker) Invoke(ctx context.Context, name string, args any, out any) error {
	body, err := marshalArgs(args)
	if err != nil {
		return err
	}
	endpoint := i.BaseURL + "/invoke/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var wire wireResponse
	decodeErr := json.Unmarshal(data, &wire)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{Status: resp.StatusCode, Kind: wire.Kind, Message: wire.Error}
		if decodeErr != nil || remote.Message == "" {
			remote.Message = strings.TrimSpace(string(data))
			if remote.Message == "" {
				remote.Message = http.StatusText(resp.StatusCode)
			}
		}
		return remote
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response of %s: %w", name, decodeErr)
	}
	return decodeResult(name, wire.Result, out)
}

// LocalInvoker dispatches straight into a registry. Arguments and results
// are round-tripped through JSON so callers see the same values as over
// HTTP.
type LocalInvoker struct {
	Registry *command.Registry
}

func NewLocalInvoker(registry *command.Registry) *LocalInvoker {
	return &LocalInvoker{Registry: registry}
}

func (i *LocalInvoker) Invoke(ctx context.Context, name string, args any, out any) error {
	body, err := marshalArgs(args)
	if err != nil {
		return err
	}
	result, err := i.Registry.Dispatch(ctx, name, body)
	if err != nil {
		return remoteError(err)
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result of %s: %w", name, err)
	}
	return decodeResult(name, raw, out)
}

func marshalArgs(args any) ([]byte, error) {
	if args == nil {
		return []byte("{}"), nil
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	return body, nil
}

func decodeResult(name string, raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode result of %s: %w", name, err)
	}
	return nil
}
