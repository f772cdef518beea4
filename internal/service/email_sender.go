package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type EmailSender struct {
	dialer               *mail.Dialer
	logger               *logrus.Logger
	enabled              bool
	isInsecureSkipVerify bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	enabledStr := os.Getenv("EMAIL_SENDER_ENABLED")
	isInsecureSkipVerifyStr := os.Getenv("INSECURE_SKIP_VERIFY")
	// Преобразуем smtpPort в int
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		logger.Fatalf("Ошибка преобразования SMTP_PORT: %v", err)
	}
	// Преобразуем enabled в bool
	enabled := enabledStr == "true"
	isInsecureSkipVerify := isInsecureSkipVerifyStr == "true"
	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: isInsecureSkipVerify,
	}
	return &EmailSender{
		dialer:  d,
		logger:  logger,
		enabled: enabled,
	}
}

func (es *EmailSender) SendLoanDisbursementNotification(email, groupName string, loanID uuid.UUID, principal decimal.Decimal) error {
	if !es.enabled {
		es.logger.Warn("Отправка уведомлений отключена")
		return nil
	}

	subject := "Уведомление о выдаче займа"
	content := fmt.Sprintf(`
		<h1>Уведомление о выдаче займа</h1>
		<p>Группа: <strong>%s</strong></p>
		<p>Номер займа: <strong>%s</strong></p>
		<p>Сумма: <strong>%s USD</strong></p>
		<p>Дата: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`, groupName, loanID.String(), principal.StringFixed(2), time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) SendDelinquencyNotification(email string, loanID uuid.UUID, outstanding decimal.Decimal) error {
	if !es.enabled {
		es.logger.Warn("Отправка уведомлений отключена")
		return nil
	}

	subject := "Уведомление о просроченном займе"
	content := fmt.Sprintf(`
		<h1>Уведомление о просроченном займе</h1>
		<p>Номер займа: <strong>%s</strong></p>
		<p>Остаток основного долга: <strong>%s USD</strong></p>
		<p>Дата: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`, loanID.String(), outstanding.StringFixed(2), time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Ошибка отправки email")
		return fmt.Errorf("не удалось отправить email: %w", err)
	}

	es.logger.Infof("Email успешно отправлен на %s", to)
	return nil
}
