package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/transactions/TXN01K3ABC", "/api/v1/transactions/:id"},
		{"/api/v1/transactions/TXN01K3ABC/cancel", "/api/v1/transactions/:id/cancel"},
		{"/api/v1/owners/owner-42/transactions", "/api/v1/owners/:id/transactions"},
		{"/api/v1/owners/owner-42/wallets/UGX", "/api/v1/owners/:id/wallets/:id"},
		{"/api/v1/transactions/stuck", "/api/v1/transactions/:id"},
		{"/api/v1/deposits", "/api/v1/deposits"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.path); got != tc.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
