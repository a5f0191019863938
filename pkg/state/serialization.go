package state

import "github.com/vmihailenco/msgpack/v5"

// MsgPackSerializer encodes values as MessagePack.
type MsgPackSerializer struct{}

// NewMsgPackSerializer creates a new MsgPack serializer.
func NewMsgPackSerializer() *MsgPackSerializer {
	return &MsgPackSerializer{}
}

// Marshal serializes a value to bytes.
func (s *MsgPackSerializer) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal deserializes bytes to a value. Empty input is ErrInvalidData.
func (s *MsgPackSerializer) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrInvalidData
	}
	return msgpack.Unmarshal(data, v)
}
