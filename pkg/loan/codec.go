package loan

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// cachedMeta is the wire form of the loan:<pid>:meta split key. LoadedAt
// travels as ISO-8601 so the value stays readable in cache tooling.
type cachedMeta struct {
	Version  int64  `msgpack:"version"`
	LoadedAt string `msgpack:"loadedAt"`
}

// EncodeFields serializes the flattened field map for the :fields key.
func EncodeFields(f Fields) ([]byte, error) {
	data, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

// DecodeFields deserializes the :fields key payload.
func DecodeFields(data []byte) (Fields, error) {
	var f Fields
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// EncodeEntities serializes the entity graph for the :entities key.
func EncodeEntities(e *Entities) ([]byte, error) {
	data, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entities: %w", err)
	}
	return data, nil
}

// DecodeEntities deserializes the :entities key payload.
func DecodeEntities(data []byte) (*Entities, error) {
	var e Entities
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return &e, nil
}

// EncodeMeta serializes version and load time for the :meta key.
func EncodeMeta(version int64, loadedAt time.Time) ([]byte, error) {
	data, err := msgpack.Marshal(cachedMeta{
		Version:  version,
		LoadedAt: loadedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	return data, nil
}

// DecodeMeta deserializes the :meta key payload.
func DecodeMeta(data []byte) (version int64, loadedAt time.Time, err error) {
	var m cachedMeta
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return 0, time.Time{}, fmt.Errorf("decode meta: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, m.LoadedAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("decode meta loadedAt: %w", err)
	}
	return m.Version, ts, nil
}
