package repository

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Change: детали записи "updated", только поля, которые реально изменились.
type Change struct {
	Before map[string]any `json:"before"`
	After  map[string]any `json:"after"`
}

// Diff: сравниваем только переданные ключи next с prev, после нормализации.
// ok == false, если ничего не изменилось.
func Diff(prev, next map[string]any) (Change, bool) {
	ch := Change{Before: map[string]any{}, After: map[string]any{}}
	for k, nv := range next {
		pv := prev[k]
		if reflect.DeepEqual(pv, nv) {
			continue
		}
		ch.Before[k] = pv
		ch.After[k] = nv
	}
	return ch, len(ch.After) > 0
}

// toMap: запись или карта полей -> обычные JSON-значения, чтобы числа,
// указатели и даты из БД сравнивались с тем, что пришло из формы
func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	for k, val := range out {
		out[k] = normalizeTime(val)
	}
	return out, nil
}

// normalizeTime приводит строки-даты к UTC, чтобы смещение зоны драйвера не давало ложный diff.
func normalizeTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return v
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeInto(fields map[string]any, dst any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}
