package services

import (
	"chat-memory/contract"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
)

type IChatService interface {
	Chat(ctx context.Context, conversationID, userID, content string) (string, error)
	ChatStream(ctx context.Context, conversationID, userID, content string) iter.Seq2[string, error]
}

// ChatService records both sides of a chat turn around the reply generator.
type ChatService struct {
	coordinator IStorageCoordinator
	generator   contract.ReplyGenerator
	log         *slog.Logger
	now         func() time.Time
}

func NewChatService(coordinator IStorageCoordinator, generator contract.ReplyGenerator, log *slog.Logger) *ChatService {
	return &ChatService{coordinator: coordinator, generator: generator, log: log, now: time.Now}
}

func (s *ChatService) Chat(ctx context.Context, conversationID, userID, content string) (string, error) {
	if _, err := s.coordinator.RecordUserMessage(ctx, conversationID, userID, content); err != nil {
		return "", err
	}

	start := s.now()
	reply, err := s.generator.GenerateReply(ctx, conversationID, content)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	_, err = s.coordinator.RecordAssistantMessage(ctx, conversationID, userID, reply,
		EstimateTokens(reply), false, WithResponseTime(s.now().Sub(start)))
	if err != nil {
		return "", err
	}
	return reply, nil
}

// ChatStream relays the generator chunks. The assistant turn is recorded once the stream ends,
// with whatever was relayed if the consumer stopped early. A failed stream records nothing.
func (s *ChatService) ChatStream(ctx context.Context, conversationID, userID, content string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if _, err := s.coordinator.RecordUserMessage(ctx, conversationID, userID, content); err != nil {
			yield("", err)
			return
		}

		start := s.now()
		var reply strings.Builder
		for chunk, err := range s.generator.GenerateReplyStream(ctx, conversationID, content) {
			if err != nil {
				s.log.Warn("Reply stream failed", "conversation_id", conversationID, "error", err)
				yield("", fmt.Errorf("generate reply stream: %w", err))
				return
			}
			reply.WriteString(chunk)
			if !yield(chunk, nil) {
				break
			}
		}

		text := reply.String()
		_, err := s.coordinator.RecordAssistantMessage(ctx, conversationID, userID, text,
			EstimateTokens(text), true, WithResponseTime(s.now().Sub(start)))
		if err != nil {
			s.log.Warn("Streamed reply not recorded", "conversation_id", conversationID, "error", err)
		}
	}
}

// EstimateTokens approximates the token cost of a reply, about four characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}
