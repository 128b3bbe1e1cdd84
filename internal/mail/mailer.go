package mail

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
)

// Mailer 订单通知发信接口
type Mailer interface {
	SendOrderConfirmation(toName, toEmail, orderCode string, totalCents int64, paymentMethod string) error
}

type sendgridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridMailer 创建 SendGrid 发信器；apiKey 为空时返回仅记日志的实现
func NewSendGridMailer(cfg *config.MailConfig) Mailer {
	if cfg.SendGridKey == "" {
		return &logMailer{}
	}
	return &sendgridMailer{
		client:   sendgrid.NewSendClient(cfg.SendGridKey),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (m *sendgridMailer) SendOrderConfirmation(toName, toEmail, orderCode string, totalCents int64, paymentMethod string) error {
	subject := fmt.Sprintf("Order Confirmation - %s", orderCode)
	html := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		toName, orderCode, float64(totalCents)/100, paymentMethod,
	)
	plain := fmt.Sprintf(
		"Dear %s, thank you for your purchase! Your order %s has been placed successfully. Total: $%.2f, payment method: %s.",
		toName, orderCode, float64(totalCents)/100, paymentMethod,
	)

	from := sgmail.NewEmail(m.fromName, m.from)
	to := sgmail.NewEmail(toName, toEmail)
	msg := sgmail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}
	return nil
}

// logMailer 未配置 API key 时的退化实现
type logMailer struct{}

func (m *logMailer) SendOrderConfirmation(toName, toEmail, orderCode string, totalCents int64, paymentMethod string) error {
	log.Printf("mail disabled, skip order confirmation: order=%s to=%s total=%d", orderCode, toEmail, totalCents)
	return nil
}
