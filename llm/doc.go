// Package llm defines the canonical, vendor neutral chat model.
//
// Callers build a ChatRequest (directly, through RequestOption values, or by
// merging a request with client defaults), and receive ChatResult values from
// blocking calls or from a Stream. Failures are reported as *Error with a
// stable ErrorKind and a redacted body.
//
// Vendor wire formats live under llm/adapter; the client that ties adapters,
// transport and streaming together lives in llm/chat.
package llm
