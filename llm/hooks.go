package llm

import (
	"context"
	"net/http"
)

// Interceptor observes every completed call of a client.
//
// Blocking calls pass the decoded result; streaming calls pass nil once the
// stream has ended naturally. A returned error is surfaced to the caller of a
// blocking call and logged for streams.
type Interceptor func(ctx context.Context, req *ChatRequest, res *ChatResult) error

// FailedRequest is the diagnostic context handed to a stream error handler.
type FailedRequest struct {
	Provider Provider
	Err      *Error
	Request  *RequestSnapshot

	// StatusCode and Header are zero when no response was received.
	StatusCode int
	Header     http.Header
}

// HTTPErrorHandler handles a failed streaming handshake. A non-nil return is
// propagated to the caller.
type HTTPErrorHandler func(ctx context.Context, f *FailedRequest) error

// RequestObserver sees the outbound request of a stream once the connection
// has been established.
type RequestObserver func(ctx context.Context, snap *RequestSnapshot) error

// ChainInterceptors runs interceptors in order and stops at the first error.
func ChainInterceptors(its ...Interceptor) Interceptor {
	return func(ctx context.Context, req *ChatRequest, res *ChatResult) error {
		for _, it := range its {
			if it == nil {
				continue
			}
			if err := it(ctx, req, res); err != nil {
				return err
			}
		}
		return nil
	}
}
