package service

import (
	"sort"
	"strings"
	"sync"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"
	"gig-marketplace/pkg/apperror"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

const (
	defaultPreviewLength = 25
	emptyPreview         = "No messages yet"
	truncationMark       = "..."
)

// ConversationEvent is published after a message is appended.
type ConversationEvent struct {
	ConversationID string
	Message        domain.ChatMessage
}

// ConversationConfig holds presentation settings for previews.
type ConversationConfig struct {
	PreviewLength  int    // runes of a text body shown before truncation
	CurrencySymbol string // prefix for amounts in notice previews
}

// ConversationService keeps an append-only message log per counterparty.
// Insertion order is the chronology; embedded timestamps are not consulted.
type ConversationService struct {
	mu   sync.RWMutex
	logs map[string][]domain.ChatMessage

	cfg       ConversationConfig
	limiter   ports.RateLimiter
	clock     clock.Clock
	events    *Dispatcher
	listeners listeners[ConversationEvent]
	log       zerolog.Logger
}

// NewConversationService creates an empty store. limiter and events may be nil.
func NewConversationService(
	cfg ConversationConfig,
	limiter ports.RateLimiter,
	clk clock.Clock,
	events *Dispatcher,
	log zerolog.Logger,
) *ConversationService {
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = defaultPreviewLength
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = "$"
	}
	if clk == nil {
		clk = clock.New()
	}
	return &ConversationService{
		logs:    make(map[string][]domain.ChatMessage),
		cfg:     cfg,
		limiter: limiter,
		clock:   clk,
		events:  events,
		log:     log,
	}
}

// Append adds msg to the tail of the conversation, creating it on first use.
func (s *ConversationService) Append(conversationID string, msg domain.ChatMessage) error {
	if strings.TrimSpace(conversationID) == "" {
		return apperror.ErrInvalidConversation()
	}
	if msg == nil {
		return apperror.ErrEmptyMessage()
	}

	s.mu.Lock()
	s.logs[conversationID] = append(s.logs[conversationID], msg)
	count := len(s.logs[conversationID])
	s.mu.Unlock()

	s.log.Debug().
		Str("conversation", conversationID).
		Str("sender", string(msg.From())).
		Int("messages", count).
		Msg("message appended")

	ev := ConversationEvent{ConversationID: conversationID, Message: msg}
	s.events.Dispatch(func() { s.listeners.notify(ev) })
	return nil
}

// Send appends a text message from the local user, stamped with the current time.
// Whitespace-only bodies are rejected; the body is otherwise stored as typed.
func (s *ConversationService) Send(conversationID, body string) (domain.TextMessage, error) {
	if strings.TrimSpace(conversationID) == "" {
		return domain.TextMessage{}, apperror.ErrInvalidConversation()
	}
	if strings.TrimSpace(body) == "" {
		return domain.TextMessage{}, apperror.ErrEmptyMessage()
	}

	now := s.clock.Now()
	if s.limiter != nil && !s.limiter.Allow(conversationID, now) {
		s.log.Warn().Str("conversation", conversationID).Msg("send throttled")
		return domain.TextMessage{}, apperror.ErrRateLimited()
	}

	msg := domain.TextMessage{Sender: domain.SenderMe, Body: body, Time: now}
	if err := s.Append(conversationID, msg); err != nil {
		return domain.TextMessage{}, err
	}
	return msg, nil
}

// Latest returns the tail message, or false if the conversation is empty.
func (s *ConversationService) Latest(conversationID string) (domain.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.logs[conversationID]
	if len(msgs) == 0 {
		return nil, false
	}
	return msgs[len(msgs)-1], true
}

// Messages returns a copy of the conversation in insertion order.
func (s *ConversationService) Messages(conversationID string) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.logs[conversationID]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// Preview summarizes the tail message for the conversation list.
func (s *ConversationService) Preview(conversationID string) string {
	msg, ok := s.Latest(conversationID)
	if !ok {
		return emptyPreview
	}
	return s.previewOf(msg)
}

// Summaries returns one row per conversation, sorted by id.
func (s *ConversationService) Summaries() []domain.ConversationSummary {
	s.mu.RLock()
	out := make([]domain.ConversationSummary, 0, len(s.logs))
	for id, msgs := range s.logs {
		sum := domain.ConversationSummary{ID: id, MessageCount: len(msgs), Preview: emptyPreview}
		if n := len(msgs); n > 0 {
			tail := msgs[n-1]
			sum.Preview = s.previewOf(tail)
			sum.LastActivity = tail.SentAt()
		}
		out = append(out, sum)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subscribe registers fn to be called after every append.
// The returned func unsubscribes.
func (s *ConversationService) Subscribe(fn func(ConversationEvent)) func() {
	return s.listeners.add(fn)
}

func (s *ConversationService) previewOf(msg domain.ChatMessage) string {
	switch m := msg.(type) {
	case domain.TextMessage:
		return truncateRunes(m.Body, s.cfg.PreviewLength)
	case domain.TransactionNotice:
		verb := "You received "
		if m.Sender == domain.SenderMe {
			verb = "You sent "
		}
		text := verb + domain.FormatMoney(s.cfg.CurrencySymbol, m.Amount)
		switch m.Status {
		case domain.NoticeStatusPending:
			text += " (pending)"
		case domain.NoticeStatusFailed:
			text += " (failed)"
		}
		return text
	case *domain.TextMessage:
		return s.previewOf(*m)
	case *domain.TransactionNotice:
		return s.previewOf(*m)
	default:
		return ""
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + truncationMark
}
