package logger

import (
	"context"

	"github.com/google/uuid"
)

// MaxRequestIDLength ограничивает длину идентификатора, принятого от клиента.
const MaxRequestIDLength = 128

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// NewRequestIDContext кладет идентификатор запроса в контекст.
// Пустой или непригодный идентификатор заменяется новым UUID.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, RequestIDOrNew(requestID))
}

// RequestIDFrom извлекает идентификатор запроса из контекста.
func RequestIDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// RequestIDOrNew возвращает id, если его можно записать в лог и заголовок
// ответа, иначе новый UUID.
func RequestIDOrNew(id string) string {
	if !validRequestID(id) {
		return uuid.NewString()
	}
	return id
}

// validRequestID допускает только печатные ASCII символы без пробелов.
func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
