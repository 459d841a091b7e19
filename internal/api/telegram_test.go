package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepLink(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{
			name:  "простой токен",
			token: "abc123",
			want:  "https://t.me/repetitor_bot?start=abc123",
		},
		{
			name:  "спецсимволы query экранируются",
			token: "a+b/c=d&e f",
			want:  "https://t.me/repetitor_bot?start=a%2Bb%2Fc%3Dd%26e+f",
		},
		{
			name:  "не-ASCII токен кодируется в UTF-8",
			token: "тк",
			want:  "https://t.me/repetitor_bot?start=%D1%82%D0%BA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepLink("repetitor_bot", tt.token))
		})
	}
}
