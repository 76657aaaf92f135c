package agent

import "context"

type sessionIDContext struct{}

const defaultSessionID = "default"

// WithSessionID sets the session routing key used by Agent.Run.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContext{}, id)
}

// SessionIDFromContext gets the session routing key from the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionIDContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

func sessionIDOrDefault(ctx context.Context) string {
	id, ok := SessionIDFromContext(ctx)
	if ok && id != "" {
		return id
	}
	return defaultSessionID
}
