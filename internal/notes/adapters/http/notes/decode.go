package notes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"

	"github.com/gofiber/fiber/v3"
)

var (
	errNotJSON      = errors.New("content type must be application/json")
	errNotObject    = errors.New("body must be a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
	errUnknownField = errors.New("unknown field")
)

// decodeStrict разбирает тело запроса как один JSON объект без неизвестных полей.
func decodeStrict(ctx fiber.Ctx, dst any) error {
	mediaType, _, err := mime.ParseMediaType(ctx.Get(fiber.HeaderContentType))
	if err != nil || mediaType != fiber.MIMEApplicationJSON {
		return errNotJSON
	}
	return decodeObject(ctx.Body(), dst)
}

// decodeObject заполняет dst из JSON объекта. Имена полей сравниваются точно:
// encoding/json сопоставляет ключи без учета регистра.
func decodeObject(data []byte, dst any) error {
	body := bytes.TrimSpace(data)
	if len(body) == 0 || body[0] != '{' {
		return errNotObject
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	allowed := jsonFields(dst)
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("%w %q", errUnknownField, key)
		}
	}

	dec = json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// jsonFields возвращает имена полей из json тегов структуры, на которую указывает dst.
func jsonFields(dst any) map[string]struct{} {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		fields[name] = struct{}{}
	}
	return fields
}
