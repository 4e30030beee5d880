package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends account lifecycle emails. Sends are best-effort: callers
// fire them without blocking the request that triggered them.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendCancellation(ctx context.Context, email, name string) error
}

// SESMailer sends email through Amazon SES
type SESMailer struct {
	client      *sesv2.Client
	from        string
	identityARN string
	logger      *slog.Logger
}

// SESMailerConfig holds configuration for the SES mailer
type SESMailerConfig struct {
	Region      string
	From        string
	IdentityARN string
	AccessKey   string
	SecretKey   string
}

// NewSESMailer creates a mailer backed by Amazon SES
func NewSESMailer(ctx context.Context, cfg SESMailerConfig, logger *slog.Logger) (*SESMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESMailer{
		client:      sesv2.NewFromConfig(awsCfg),
		from:        cfg.From,
		identityARN: cfg.IdentityARN,
		logger:      logger,
	}, nil
}

// SendWelcome sends the signup greeting
func (m *SESMailer) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Thanks for joining in!"
	body := fmt.Sprintf("Welcome to the app, %s. Let me know how you get along with the app.", name)
	return m.send(ctx, email, subject, body)
}

// SendCancellation sends the account deletion goodbye
func (m *SESMailer) SendCancellation(ctx context.Context, email, name string) error {
	subject := "Sorry to see you go!"
	body := fmt.Sprintf("Goodbye, %s. I hope to see you back sometime soon.", name)
	return m.send(ctx, email, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}
	if m.identityARN != "" {
		input.FromEmailAddressIdentityArn = aws.String(m.identityARN)
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// NoopMailer discards all email. Used when email delivery is disabled.
type NoopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that logs instead of sending
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// SendWelcome logs the send and discards it
func (m *NoopMailer) SendWelcome(_ context.Context, email, _ string) error {
	m.logger.Debug("email delivery disabled, dropping welcome email", "to", email)
	return nil
}

// SendCancellation logs the send and discards it
func (m *NoopMailer) SendCancellation(_ context.Context, email, _ string) error {
	m.logger.Debug("email delivery disabled, dropping cancellation email", "to", email)
	return nil
}
