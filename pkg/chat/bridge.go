package chat

import (
	"context"
	"log/slog"
	"sync"
)

// Querier answers user queries. Satisfied by *Client.
type Querier interface {
	Query(ctx context.Context, query string) (*QueryReply, error)
}

// ErrorNotice is appended to the log when the backend cannot be reached.
const ErrorNotice = "Sorry, I couldn't reach the assistant right now."

// Bridge appends transcripts to the conversation log and queries the backend
// for a reply. It satisfies the voice package's ChatBridge interface.
//
// Submit never blocks on the network: the backend round trip runs on its own
// goroutine, and the reply (or an error notice) lands in the log when it
// arrives.
type Bridge struct {
	querier Querier
	log     *Log
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridge creates a Bridge over the given backend querier and log.
func NewBridge(querier Querier, log *Log, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		querier: querier,
		log:     log,
		logger:  logger.With("component", "chat-bridge"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit records a user message and asks the backend for a reply.
func (b *Bridge) Submit(text string) {
	if text == "" {
		return
	}
	b.log.Append(NewUserMessage(text))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		reply, err := b.querier.Query(b.ctx, text)
		if err != nil {
			b.logger.Error("backend query failed", "error", err)
			b.log.Append(NewAssistantMessage(ErrorNotice, ""))
			return
		}
		b.log.Append(NewAssistantMessage(reply.Response, reply.WalletLink))
	}()
}

// Close cancels in-flight queries and waits for them to finish.
func (b *Bridge) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
