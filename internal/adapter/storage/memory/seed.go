package memory

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gig-marketplace/internal/core/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the startup data: the listing catalog plus existing conversations.
type Seed struct {
	Workers       []WorkerRecord       `yaml:"workers"`
	Jobs          []JobRecord          `yaml:"jobs"`
	Conversations []ConversationRecord `yaml:"conversations"`
}

// WorkerRecord is a worker profile as written in the seed file.
type WorkerRecord struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Profession string          `yaml:"profession"`
	Rating     float64         `yaml:"rating"`
	Experience string          `yaml:"experience"`
	Rate       decimal.Decimal `yaml:"rate"`
	Avatar     string          `yaml:"avatar"`
	Location   domain.GeoPoint `yaml:"location"`
}

// JobRecord is an open job as written in the seed file.
type JobRecord struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Area        string          `yaml:"area"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Duration    string          `yaml:"duration"`
	Location    domain.GeoPoint `yaml:"location"`
}

// ConversationRecord is a chat history keyed by counterparty id.
type ConversationRecord struct {
	ID       string          `yaml:"id"`
	Messages []MessageRecord `yaml:"messages"`
}

// MessageRecord is one text line of a seeded conversation.
type MessageRecord struct {
	From domain.Sender `yaml:"from"`
	Text string        `yaml:"text"`
	Time time.Time     `yaml:"time"`
}

// DefaultSeed decodes the embedded seed.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile decodes a seed from path. An empty path yields the embedded seed.
func LoadSeedFile(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a YAML seed. Unknown fields are rejected.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// Listings converts the seed's workers and jobs into catalog listings, workers first.
func (s *Seed) Listings() []domain.Listing {
	out := make([]domain.Listing, 0, len(s.Workers)+len(s.Jobs))
	for _, w := range s.Workers {
		out = append(out, domain.Listing{
			ID:         w.ID,
			Kind:       domain.ListingKindWorker,
			Title:      w.Name,
			Location:   w.Location,
			Price:      w.Rate,
			Profession: w.Profession,
			Rating:     w.Rating,
			Experience: w.Experience,
			AvatarURL:  w.Avatar,
		})
	}
	for _, j := range s.Jobs {
		out = append(out, domain.Listing{
			ID:          j.ID,
			Kind:        domain.ListingKindJob,
			Title:       j.Title,
			Location:    j.Location,
			Price:       j.Price,
			Area:        j.Area,
			Description: j.Description,
			Duration:    j.Duration,
		})
	}
	return out
}

// ChatMessages converts a conversation record into chat messages in file order.
func (c ConversationRecord) ChatMessages() ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, 0, len(c.Messages))
	for i, m := range c.Messages {
		if m.From != domain.SenderMe && m.From != domain.SenderThem {
			return nil, fmt.Errorf("conversation %s message %d: unknown sender %q", c.ID, i, m.From)
		}
		out = append(out, domain.TextMessage{Sender: m.From, Body: m.Text, Time: m.Time})
	}
	return out, nil
}
