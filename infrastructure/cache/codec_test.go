package cache

import (
	"chat-memory/domain"
	"chat-memory/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func Test_Codec_Keeps_Absent_Optional_Fields_Absent(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:             "m1",
		ConversationID: "c1",
		UserID:         "u1",
		Role:           domain.RoleUser,
		Content:        "hi",
		CreatedAt:      time.Unix(0, 1_700_000_000_123_456_789).UTC(),
	}

	decoded, err := decodeMessage(encodeMessage(message))

	req.NoError(err)
	req.Equal(message, decoded)
	req.Nil(decoded.TokenUsed)
	req.Nil(decoded.ResponseTimeMs)
	req.Nil(decoded.IsStreaming)
	req.Nil(decoded.ModelName)
}

func Test_Codec_Keeps_Present_Zero_Values(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:             "m2",
		ConversationID: "c1",
		UserID:         "u1",
		Role:           domain.RoleAssistant,
		Content:        "",
		CreatedAt:      time.Unix(0, 0).UTC(),
		TokenUsed:      lo.ToPtr(0),
		ResponseTimeMs: lo.ToPtr(int64(0)),
		IsStreaming:    lo.ToPtr(false),
		ModelName:      lo.ToPtr(""),
	}

	decoded, err := decodeMessage(encodeMessage(message))

	req.NoError(err)
	req.Equal(message, decoded)
}

func Test_Codec_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	message := domain.NewAssistantMessage("c1", "u1", "hello", 12, true, time.Now())
	b := encodeMessage(message)
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "from a newer writer")

	decoded, err := decodeMessage(b)

	req.NoError(err)
	req.True(message.Equal(decoded))
}

func Test_Codec_Rejects_Truncated_Entry(t *testing.T) {
	req := require.New(t)
	b := encodeMessage(domain.NewUserMessage("c1", "u1", "hello", time.Now()))

	_, err := decodeMessage(b[:len(b)-3])

	req.ErrorIs(err, errors.ErrMalformedCacheEntry)
}

func Test_Codec_IDs_Keep_Order(t *testing.T) {
	req := require.New(t)
	ids := []string{"a", "b", "c"}

	decoded, err := decodeIDs(encodeIDs(ids))

	req.NoError(err)
	req.Equal(ids, decoded)
}
