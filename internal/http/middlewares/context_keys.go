package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxIdentity  = "auth.identity"
	CtxLogger    = "logger"
)

// Forwarded identity headers. Clients cannot set these; the identity
// middleware removes inbound copies and writes verified values.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
)
