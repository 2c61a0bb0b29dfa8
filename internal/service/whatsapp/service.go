package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockboard/internal/domain/models"
	client "github.com/mamadbah2/stockboard/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// AlertNotifier pushes low stock digests to an operator.
type AlertNotifier interface {
	NotifyStockAlerts(ctx context.Context, alerts []models.Item) error
}

// StockAlertService is the production implementation backed by WhatsApp Cloud API.
type StockAlertService struct {
	sender    client.Sender
	recipient string
	logger    *zap.Logger
}

// NewStockAlertService wires a new service instance.
func NewStockAlertService(sender client.Sender, recipient string, logger *zap.Logger) *StockAlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAlertService{
		sender:    sender,
		recipient: recipient,
		logger:    logger,
	}
}

// NotifyStockAlerts sends one digest listing every alert. Nothing is sent
// when the list is empty.
func (s *StockAlertService) NotifyStockAlerts(ctx context.Context, alerts []models.Item) error {
	if len(alerts) == 0 {
		s.logger.Debug("no stock alerts to send")
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	messageID, err := s.sender.SendText(ctxWithTimeout, s.recipient, FormatStockAlerts(alerts))
	if err != nil {
		return fmt.Errorf("send stock alerts: %w", err)
	}

	s.logger.Info("stock alerts sent",
		zap.String("to", s.recipient),
		zap.String("message_id", messageID),
		zap.Int("alerts", len(alerts)))
	return nil
}

// FormatStockAlerts renders the digest, one "• name - qty units left" line per item.
func FormatStockAlerts(alerts []models.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock Alerts (%d)", len(alerts))
	for _, item := range alerts {
		fmt.Fprintf(&b, "\n• %s - %d units left", item.Name, item.Quantity)
	}
	return b.String()
}
