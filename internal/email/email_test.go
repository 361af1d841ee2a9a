package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unigate-dev/unigate/internal/config"
)

func TestIsCorrect(t *testing.T) {
	mailer := New(&config.Smtp{})

	valid := []string{
		"jane.doe@university.edu",
		"j@u.io",
		"first+tag@sub.university.edu",
	}
	for _, email := range valid {
		assert.NoError(t, mailer.IsCorrect(email), email)
	}

	invalid := []string{
		"",
		"no-at-sign",
		"@university.edu",
		"jane@",
		"jane doe@university.edu",
	}
	for _, email := range invalid {
		assert.Error(t, mailer.IsCorrect(email), email)
	}
}

func TestNewPicksConsoleWithoutServer(t *testing.T) {
	_, ok := New(&config.Smtp{}).(*Console)
	assert.True(t, ok)

	_, ok = New(&config.Smtp{Server: "smtp.university.edu", Port: 465}).(*Smtp)
	assert.True(t, ok)
}
