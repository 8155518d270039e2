// internal/interfaces/http/middleware/cors_test.go
package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{name: "exact match", origin: "https://shop.example.com", allowed: []string{"https://shop.example.com"}, want: true},
		{name: "wildcard allows all", origin: "https://anything.test", allowed: []string{"*"}, want: true},
		{name: "subdomain wildcard", origin: "https://driver.example.com", allowed: []string{"*.example.com"}, want: true},
		{name: "not in list", origin: "https://evil.test", allowed: []string{"https://shop.example.com"}, want: false},
		{name: "empty origin", origin: "", allowed: []string{"*"}, want: false},
		{name: "empty list", origin: "https://shop.example.com", allowed: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.origin, tt.allowed))
		})
	}
}
