// Package faq resolves inbound messages to stored answers by keyword.
package faq

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbantrend/cart-recall/internal/model"
)

// Source loads FAQ entries in storage order.
type Source interface {
	FindFAQEntries(ctx context.Context) ([]model.FAQEntry, error)
}

type Matcher struct {
	src Source
}

func NewMatcher(src Source) *Matcher {
	return &Matcher{src: src}
}

// Match lower-cases the message and scans entries in storage order. An
// entry matches when any of its keywords is a substring of the message;
// the first matching entry wins. No scoring, no best-match.
func (m *Matcher) Match(ctx context.Context, message string) (answer string, ok bool, err error) {
	entries, err := m.src.FindFAQEntries(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load faq entries: %w", err)
	}

	lowered := strings.ToLower(message)

	for _, e := range entries {
		for _, kw := range e.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(lowered, kw) {
				return e.Answer, true, nil
			}
		}
	}

	return "", false, nil
}
