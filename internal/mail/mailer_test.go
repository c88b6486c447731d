package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fanpuri-backend/internal/models"
)

func TestOrderConfirmationBody(t *testing.T) {
	order := models.Order{
		OrderID:    "FP-1700000000000-DEADBEEF",
		TotalPrice: 95,
		Items: []models.OrderItem{
			{Name: "Nebula Print", Price: 45, Quantity: 1},
			{Name: "Sticker Pack", Price: 25, Quantity: 2},
		},
	}

	body := OrderConfirmationBody(order)

	assert.Contains(t, body, "FP-1700000000000-DEADBEEF")
	assert.Contains(t, body, "1 x Nebula Print")
	assert.Contains(t, body, "2 x Sticker Pack")
	assert.Contains(t, body, "Total: 95.00")
}

func TestLogMailerNeverErrors(t *testing.T) {
	mailer := LogMailer{}

	assert.NoError(t, mailer.SendOrderConfirmation("a@example.com", models.Order{OrderID: "FP-1-ABCDEF12"}))
	assert.NoError(t, mailer.SendWaitlistConfirmation("a@example.com", "Nebula Print"))
}
