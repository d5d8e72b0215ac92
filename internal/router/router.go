// Package router handles inbound messages: presence stamping, FAQ
// answers and keyword commands.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/urbantrend/cart-recall/internal/compose"
	"github.com/urbantrend/cart-recall/internal/repo"
	"github.com/urbantrend/cart-recall/internal/transport"
)

// FAQMatcher resolves a message to a stored answer, if any.
type FAQMatcher interface {
	Match(ctx context.Context, message string) (answer string, ok bool, err error)
}

const (
	rosterKeyword = "list"
	testKeyword   = "test"
)

type Router struct {
	users   repo.UserRepository
	matcher FAQMatcher
	sender  transport.Sender
}

func New(users repo.UserRepository, matcher FAQMatcher, sender transport.Sender) *Router {
	return &Router{users: users, matcher: matcher, sender: sender}
}

// Handler adapts the router to the transport's inbound callback.
func (r *Router) Handler() transport.Handler {
	return r.HandleMessage
}

// HandleMessage routes one inbound message: stamp last-seen
// (fire-and-forget), then FAQ, then commands. Unrecognized messages get
// no reply. Nothing here ever mutates cart or product data, and no
// failure escapes to the caller.
func (r *Router) HandleMessage(ctx context.Context, from, body string) {
	slog.Info("inbound message", "from", from)

	go r.touchLastSeen(from)

	answer, ok, err := r.matcher.Match(ctx, body)
	if err != nil {
		slog.Error("faq lookup failed", "from", from, "err", err)
		r.reply(ctx, from, compose.Apology)
		return
	}
	if ok {
		r.reply(ctx, from, answer)
		return
	}

	lowered := strings.ToLower(body)
	switch {
	case strings.Contains(lowered, rosterKeyword):
		r.replyRoster(ctx, from)
	case strings.Contains(lowered, testKeyword):
		r.reply(ctx, from, compose.TestAck)
	}
}

// touchLastSeen stamps the sender's presence. An unknown contact affects
// zero rows and is not an error; a store failure is logged and dropped.
func (r *Router) touchLastSeen(contact string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.users.UpdateLastSeen(ctx, contact); err != nil {
		slog.Warn("last-seen update failed", "contact", contact, "err", err)
	}
}

func (r *Router) replyRoster(ctx context.Context, to string) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		slog.Error("list users failed", "err", err)
		r.reply(ctx, to, compose.Apology)
		return
	}
	r.reply(ctx, to, compose.Roster(users))
}

func (r *Router) reply(ctx context.Context, to, text string) {
	if _, err := r.sender.SendText(ctx, to, text); err != nil {
		slog.Error("reply send failed", "to", to, "err", err)
	}
}
