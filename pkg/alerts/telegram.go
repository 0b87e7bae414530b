package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram allows roughly 30 messages per minute per chat; spacing sends
// avoids 429 responses on busy slates.
const telegramSendInterval = 2 * time.Second

// Notifier delivers a rendered alert. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifier sends alerts to one chat through a buffered queue so the
// flusher never blocks on the Telegram API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *log.Logger

	mu       sync.Mutex
	lastSend time.Time

	queue  chan string
	done   chan struct{}
	cancel context.CancelFunc
}

// NewTelegramNotifier connects to the bot API and starts the send worker.
func NewTelegramNotifier(token string, chatID int64, logger *log.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("telegram bot handshake: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
		queue:  make(chan string, 100),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go n.worker(ctx)

	logger.Printf("telegram notifier ready chat_id=%d", chatID)
	return n, nil
}

// Send queues a message without blocking. A full queue drops the message;
// alerts are time-sensitive and a stale send is worse than none.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- text:
		return nil
	default:
		n.logger.Printf("telegram queue full, dropping message")
		return fmt.Errorf("telegram queue full")
	}
}

// Stop drains the queue and shuts the worker down.
func (n *TelegramNotifier) Stop() {
	n.cancel()
	<-n.done
}

func (n *TelegramNotifier) worker(ctx context.Context) {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case text := <-n.queue:
					n.deliver(text)
				default:
					return
				}
			}
		case text := <-n.queue:
			n.deliver(text)
		}
	}
}

func (n *TelegramNotifier) deliver(text string) {
	n.mu.Lock()
	if wait := telegramSendInterval - time.Since(n.lastSend); wait > 0 {
		time.Sleep(wait)
	}
	n.lastSend = time.Now()
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Printf("telegram send failed: %v", err)
		return
	}
	n.logger.Printf("telegram sent queue_len=%d", len(n.queue))
}
