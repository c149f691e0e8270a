// File: internal/services/identity/notifier.go
package identity

import (
	"context"

	"github.com/iyunix/go-onyom/internal/services"
)

// Notifier delivers verification codes to the account holder.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// LogNotifier writes codes to the log instead of sending mail. It is the
// default for local runs where no mail relay is configured.
type LogNotifier struct {
	logger services.Logger
}

func NewLogNotifier(logger services.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	n.logger.Info("verification code issued", "email", services.MaskEmail(email), "code", code)
	return nil
}
