package users_test

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_SendNewPassword(t *testing.T) {
	config := users.SMTPConfig{
		Host:     "mail.example.com",
		Port:     587,
		Username: "portal",
		Password: "secret",
		From:     "support@example.com",
	}

	t.Run("sends the password email", func(t *testing.T) {
		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte

		mailer := users.NewSMTPMailer(config, testLogger{}).
			WithSender(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
				gotAddr = addr
				gotFrom = from
				gotTo = to
				gotMsg = msg
				return nil
			})

		err := mailer.SendNewPassword(context.Background(), "Jane", "xKqLmPwRst", "jane@example.com")
		require.NoError(t, err)

		assert.Equal(t, "mail.example.com:587", gotAddr)
		assert.Equal(t, "support@example.com", gotFrom)
		assert.Equal(t, []string{"jane@example.com"}, gotTo)
		assert.Contains(t, string(gotMsg), "Hello Jane")
		assert.Contains(t, string(gotMsg), "xKqLmPwRst")
		assert.Contains(t, string(gotMsg), "Subject: ")
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		mailer := users.NewSMTPMailer(config, testLogger{}).
			WithSender(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
				return assert.AnError
			})

		err := mailer.SendNewPassword(context.Background(), "Jane", "password", "jane@example.com")
		assert.Error(t, err)
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		called := false
		mailer := users.NewSMTPMailer(config, testLogger{}).
			WithSender(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
				called = true
				return nil
			})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := mailer.SendNewPassword(ctx, "Jane", "password", "jane@example.com")
		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestNoopMailer(t *testing.T) {
	mailer := users.NoopMailer{Logger: testLogger{}}
	assert.NoError(t, mailer.SendNewPassword(context.Background(), "Jane", "password", "jane@example.com"))
}
