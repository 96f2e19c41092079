package email

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

func newTestNotifier(t *testing.T) *SMTPNotifier {
	t.Helper()
	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", To: "owner@example.com"}, logger.NewNop())
	require.NoError(t, err)
	return n
}

func TestNewSMTPNotifier_RequiresRecipient(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587}, logger.NewNop())
	assert.Error(t, err)
}

func TestBuildListingCreatedMessage(t *testing.T) {
	n := newTestNotifier(t)
	price := 450000.0
	l := &domain.Listing{
		ListingNumber: "ARC-000011",
		Title:         "Temiz <320i>",
		Brand:         "BMW",
		Series:        "3 Serisi",
		Price:         &price,
		Images:        []domain.Image{{ImageID: "cars/a.jpg"}},
	}

	m := n.buildListingCreatedMessage(l)

	assert.Equal(t, []string{"bot@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"owner@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Yeni ilan: ARC-000011 - Temiz <320i>"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "450000 TL")
	assert.Contains(t, buf.String(), "&lt;320i&gt;")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Fiyat sorunuz", formatPrice(nil))
	p := 12500.0
	assert.Equal(t, "12500 TL", formatPrice(&p))
}

func TestNotifyListingCreated_QueueFull(t *testing.T) {
	n := newTestNotifier(t)
	l := &domain.Listing{ListingNumber: "ARC-000011"}

	for i := 0; i < queueSize; i++ {
		require.NoError(t, n.NotifyListingCreated(l))
	}
	assert.ErrorIs(t, n.NotifyListingCreated(l), ErrQueueFull)
}
