// Package compose renders every user-facing text the service sends.
// All renderers are pure: identical input yields identical output.
package compose

import (
	"fmt"
	"strings"

	"github.com/urbantrend/cart-recall/internal/model"
)

const (
	// TestAck answers the "test" command.
	TestAck = "✅ Funcionando!"

	// Apology is the only error text ever sent over the transport.
	Apology = "❌ Desculpe, ocorreu um erro. Tente novamente."

	// EmptyRoster answers the roster command when no users exist.
	EmptyRoster = "📭 Nenhum usuário encontrado."
)

// Reminder renders the abandoned-cart message for one user: greeting,
// the eligibility-window sentence, one block per product and a closing
// call to action.
func Reminder(name string, windowDays int, products []model.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "👋 Olá %s!\n\n", name)
	fmt.Fprintf(&b, "Notamos que você deixou alguns produtos no carrinho há mais de %d dias:\n\n", windowDays)

	for _, p := range products {
		fmt.Fprintf(&b, "👕 %s\n", p.Name)
		fmt.Fprintf(&b, "💰 R$ %s\n", p.Price.StringFixed(2))
		fmt.Fprintf(&b, "🔗 %s\n\n", p.Link)
	}

	b.WriteString("Não perca a chance de finalizar sua compra! Os produtos podem acabar em breve. 😊\n")
	b.WriteString("Precisa de ajuda? Estamos aqui para te ajudar!")

	return b.String()
}

// Roster renders the formatted user list for the roster command.
func Roster(users []model.User) string {
	if len(users) == 0 {
		return EmptyRoster
	}

	var b strings.Builder
	b.WriteString("👤 Usuários:\n")

	for i, u := range users {
		fmt.Fprintf(&b, "\n🆔 ID: %d", i+1)
		fmt.Fprintf(&b, "\n📌 Nome: %s", u.Name)
		fmt.Fprintf(&b, "\n📞 Telefone: %s", u.Contact)
		fmt.Fprintf(&b, "\n🔄 Lembretes: %d\n", u.ReminderCount)
	}

	return b.String()
}
