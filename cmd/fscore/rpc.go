package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/mutagen-io/fscore/internal/fscore/facade"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// request is a single line of the newline-delimited JSON-RPC-style
// protocol: "{ id, method, params }" in, "{ id, ok, result|error }" out.
type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type response struct {
	ID     json.RawMessage `json:"id"`
	OK     bool            `json:"ok"`
	Result interface{}     `json:"result,omitempty"`
	Error  *errorEnvelope  `json:"error,omitempty"`
}

type errorEnvelope struct {
	Code       fserrors.Code `json:"code"`
	Message    string        `json:"message"`
	Path       string        `json:"path,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

func toEnvelope(ferr *fserrors.Error) *errorEnvelope {
	if ferr == nil {
		return nil
	}
	return &errorEnvelope{
		Code:       ferr.Code,
		Message:    ferr.Message,
		Path:       ferr.Path,
		Suggestion: ferr.Suggestion,
	}
}

// serve reads one JSON request per line from r and writes one JSON response
// per line to w, dispatching each into client. It returns only when r
// reaches EOF or a write fails.
func serve(r io.Reader, w io.Writer, client *facade.Client) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			encoder.Encode(response{Error: &errorEnvelope{
				Code:    fserrors.InvalidInput,
				Message: "malformed request: " + err.Error(),
			}})
			continue
		}

		resp := dispatch(context.Background(), client, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, client *facade.Client, req request) response {
	handler, ok := methods[req.Method]
	if !ok {
		return response{ID: req.ID, Error: &errorEnvelope{
			Code:    fserrors.InvalidInput,
			Message: "unknown method " + req.Method,
		}}
	}
	result, ferr := handler(ctx, client, req.Params)
	if ferr != nil {
		return response{ID: req.ID, Error: toEnvelope(ferr)}
	}
	return response{ID: req.ID, OK: true, Result: result}
}
