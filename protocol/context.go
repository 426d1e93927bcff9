package protocol

import "context"

type requestMetaKey struct{}

// RequestMeta holds transport-level facts about a request, such as the
// transport name or the remote address of a WebSocket peer.
type RequestMeta map[string]string

// Well-known RequestMeta keys set by the transports.
const (
	MetaTransport  = "transport"
	MetaRemoteAddr = "remote_addr"
)

// ContextWithRequestMeta returns a new context with the request metadata attached.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the request metadata from the context, or nil.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return nil
}

// GetRequestMeta returns a single metadata value, or "" when absent.
func GetRequestMeta(ctx context.Context, key string) string {
	return RequestMetaFromContext(ctx)[key]
}
