package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
)

// ErrEmptyEmbedding is returned when the service answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding service returned no vector")

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("text to embed is empty")

// FailureKind classifies why no vector is available.
type FailureKind int

const (
	// FailureNone means the embedding succeeded.
	FailureNone FailureKind = iota
	// FailureRateLimited means the service throttled the request.
	FailureRateLimited
	// FailureUnauthorized means the credentials were rejected.
	FailureUnauthorized
	// FailureConnection means the service could not be reached or timed out.
	FailureConnection
	// FailureMalformed means the request or response could not be used.
	FailureMalformed
	// FailureUnknown covers every other upstream error.
	FailureUnknown
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureRateLimited:
		return "rate_limited"
	case FailureUnauthorized:
		return "unauthorized"
	case FailureConnection:
		return "connection"
	case FailureMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Embedding is the outcome of a single embedding request: either a vector,
// or a failure kind with the underlying error. It never carries both.
type Embedding struct {
	Vector  []float32
	Failure FailureKind
	Err     error
}

// Available reports whether a vector was produced.
func (e Embedding) Available() bool {
	return e.Failure == FailureNone && len(e.Vector) > 0
}

// Embed requests a vector for text and folds any failure into the result.
// It never returns an error: callers treat an unavailable embedding as
// "no vector" and carry on.
func Embed(ctx context.Context, embedder Embedder, text string, logger *slog.Logger) Embedding {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(text) == "" {
		return Embedding{Failure: FailureMalformed, Err: ErrEmptyText}
	}

	vector, err := embedder.EmbedText(ctx, text)
	if err == nil && len(vector) == 0 {
		err = ErrEmptyEmbedding
	}
	if err != nil {
		kind := Classify(err)
		logger.Warn("embedding unavailable", "failure", kind.String(), "err", err)
		return Embedding{Failure: kind, Err: err}
	}
	return Embedding{Vector: vector}
}

// Classify maps an embedding client error onto a FailureKind.
// OpenAI-compatible clients report HTTP failures as
// "API returned unexpected status code: NNN: ...", so status codes are
// recognised from the message when no typed error is available.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	if errors.Is(err, ErrEmptyEmbedding) || errors.Is(err, ErrEmptyText) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FailureMalformed
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return FailureMalformed
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 429"), strings.Contains(msg, "rate limit"):
		return FailureRateLimited
	case strings.Contains(msg, "status code: 401"), strings.Contains(msg, "status code: 403"),
		strings.Contains(msg, "invalid api key"), strings.Contains(msg, "incorrect api key"):
		return FailureUnauthorized
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"):
		return FailureConnection
	case strings.Contains(msg, "status code: 400"), strings.Contains(msg, "invalid character"),
		strings.Contains(msg, "unexpected end of json"):
		return FailureMalformed
	}
	return FailureUnknown
}
