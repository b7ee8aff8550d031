package cache

import (
	"chat-memory/domain"
	"chat-memory/errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout of a cached message. Optional fields are only written when present,
// so a nil pointer decodes back to nil and a zero value decodes back to a zero value.
const (
	fieldID             protowire.Number = 1
	fieldConversationID protowire.Number = 2
	fieldUserID         protowire.Number = 3
	fieldRole           protowire.Number = 4
	fieldContent        protowire.Number = 5
	fieldCreatedAt      protowire.Number = 6
	fieldTokenUsed      protowire.Number = 7
	fieldResponseTimeMs protowire.Number = 8
	fieldIsStreaming    protowire.Number = 9
	fieldModelName      protowire.Number = 10

	fieldMessageID protowire.Number = 1
)

func encodeMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, fieldID, m.ID)
	b = appendString(b, fieldConversationID, m.ConversationID)
	b = appendString(b, fieldUserID, m.UserID)
	b = appendString(b, fieldRole, string(m.Role))
	b = appendString(b, fieldContent, m.Content)
	b = appendInt64(b, fieldCreatedAt, m.CreatedAt.UnixNano())
	if m.TokenUsed != nil {
		b = appendInt64(b, fieldTokenUsed, int64(*m.TokenUsed))
	}
	if m.ResponseTimeMs != nil {
		b = appendInt64(b, fieldResponseTimeMs, *m.ResponseTimeMs)
	}
	if m.IsStreaming != nil {
		b = protowire.AppendTag(b, fieldIsStreaming, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(*m.IsStreaming))
	}
	if m.ModelName != nil {
		b = appendString(b, fieldModelName, *m.ModelName)
	}
	return b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Message{}, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			b = b[n:]
			setString(&m, num, v)
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			b = b[n:]
			setVarint(&m, num, v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if m.ID == "" {
		return domain.Message{}, malformed(fmt.Errorf("missing message id"))
	}
	return m, nil
}

func setString(m *domain.Message, num protowire.Number, v string) {
	switch num {
	case fieldID:
		m.ID = v
	case fieldConversationID:
		m.ConversationID = v
	case fieldUserID:
		m.UserID = v
	case fieldRole:
		m.Role = domain.Role(v)
	case fieldContent:
		m.Content = v
	case fieldModelName:
		m.ModelName = &v
	}
}

func setVarint(m *domain.Message, num protowire.Number, v uint64) {
	switch num {
	case fieldCreatedAt:
		m.CreatedAt = time.Unix(0, protowire.DecodeZigZag(v)).UTC()
	case fieldTokenUsed:
		tokens := int(protowire.DecodeZigZag(v))
		m.TokenUsed = &tokens
	case fieldResponseTimeMs:
		ms := protowire.DecodeZigZag(v)
		m.ResponseTimeMs = &ms
	case fieldIsStreaming:
		streaming := protowire.DecodeBool(v)
		m.IsStreaming = &streaming
	}
}

func encodeIDs(ids []string) []byte {
	var b []byte
	for _, id := range ids {
		b = appendString(b, fieldMessageID, id)
	}
	return b
}

func decodeIDs(b []byte) ([]string, error) {
	var ids []string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed(protowire.ParseError(n))
		}
		b = b[n:]
		if num != fieldMessageID || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed(protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		id, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, malformed(protowire.ParseError(n))
		}
		b = b[n:]
		ids = append(ids, id)
	}
	return ids, nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrMalformedCacheEntry, err)
}
