package chatbot

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message is empty")

var replies = []string{
	"That's pawsome! Let me help you find the perfect energy boost. Meow!",
	"Purr-fect question! Catrink has amazing flavors that'll make you feel like the cat's whiskers. Meow!",
	"I'm feline good about helping you with that! What specific flavor are you curious about? Meow!",
	"That's claw-some! Our energy drinks are designed to awaken your inner predator instincts. Meow!",
	"Whiskers! I'd be happy to help you with that. What energy level are you looking for today? Meow!",
	"Paw-sitively! Catrink energy drinks are the cat's pajamas for boosting your reflexes. Meow!",
	"That's fur-tastic! I can help you find exactly what you're looking for in our collection. Meow!",
	"Meow-nificent question! Our premium ingredients will have you feeling like a sleek panther. Meow!",
	"I'm not kitten around - that's a great question! Let me share some details with you. Meow!",
	"Claw-some choice! Catrink is purr-fect for anyone wanting to unlock their feline potential. Meow!",
}

const greeting = "Hey there, energy seeker! I'm MeowCat, your personal Catrink assistant. Need help finding the perfect energy drink to awaken your inner cat? Meow! 🐱"

const (
	minDelay  = time.Second
	delaySpan = 1500 * time.Millisecond
)

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"is_bot"`
	Timestamp time.Time `json:"timestamp"`
}

// Greeting opens every transcript.
func Greeting() Message {
	return Message{ID: "1", Text: greeting, IsBot: true, Timestamp: time.Now()}
}

// Reply maps a draw r in [0,1) onto the reply table.
func Reply(r float64) string {
	i := int(r * float64(len(replies)))
	if i < 0 {
		i = 0
	}
	if i >= len(replies) {
		i = len(replies) - 1
	}
	return replies[i]
}

// Bot answers with a canned reply after a short typing pause. The message
// content is not interpreted.
type Bot struct {
	rand func() float64
}

func New() *Bot { return &Bot{rand: rand.Float64} }

func (b *Bot) delay(r float64) time.Duration {
	return minDelay + time.Duration(r*float64(delaySpan))
}

func (b *Bot) Respond(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	t := time.NewTimer(b.delay(b.rand()))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-t.C:
	}

	return Message{ID: uuid.NewString(), Text: Reply(b.rand()), IsBot: true, Timestamp: time.Now()}, nil
}
