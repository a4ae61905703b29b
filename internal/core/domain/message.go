package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sender identifies which side of a conversation wrote a message.
type Sender string

const (
	SenderMe   Sender = "me"
	SenderThem Sender = "them"
)

// NoticeStatus is the settlement state shown on a payment notice.
type NoticeStatus string

const (
	NoticeStatusCompleted NoticeStatus = "COMPLETED"
	NoticeStatusPending   NoticeStatus = "PENDING"
	NoticeStatusFailed    NoticeStatus = "FAILED"
)

// ChatMessage is either a TextMessage or a TransactionNotice.
// The set is closed: only types in this package implement it.
type ChatMessage interface {
	From() Sender
	SentAt() time.Time
	chatMessage()
}

// TextMessage is a plain chat line.
type TextMessage struct {
	Sender Sender    `json:"sender"`
	Body   string    `json:"body"`
	Time   time.Time `json:"time"`
}

func (m TextMessage) From() Sender      { return m.Sender }
func (m TextMessage) SentAt() time.Time { return m.Time }
func (TextMessage) chatMessage()        {}

// TransactionNotice records a payment inside a conversation.
// Amount is unsigned; direction follows from Sender.
type TransactionNotice struct {
	Sender        Sender          `json:"sender"`
	Amount        decimal.Decimal `json:"amount"`
	Status        NoticeStatus    `json:"status"`
	TransactionID int64           `json:"transaction_id,omitempty"`
	Time          time.Time       `json:"time"`
}

func (m TransactionNotice) From() Sender      { return m.Sender }
func (m TransactionNotice) SentAt() time.Time { return m.Time }
func (TransactionNotice) chatMessage()        {}

// ConversationSummary is the chat-list row for one counterparty.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Preview      string    `json:"preview"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}
