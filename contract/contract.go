//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-memory/domain"
	"context"
	"iter"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// MessagePersister hands a message to the durable tier without waiting for it.
type MessagePersister interface {
	Enqueue(message domain.Message) error
}

// HistoryLoader is the chat memory consulted by the reply generator.
type HistoryLoader interface {
	LoadHistory(ctx context.Context, conversationID string, maxMessages int) ([]domain.Message, error)
}

// ReplyGenerator is the LLM collaborator. Implementations read prior turns through a HistoryLoader.
// The stream is finite and can be ranged over only once.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, conversationID, userMessage string) (string, error)
	GenerateReplyStream(ctx context.Context, conversationID, userMessage string) iter.Seq2[string, error]
}
