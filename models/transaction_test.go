package models

import "testing"

func TestTransactionStatus(t *testing.T) {
	tests := []struct {
		name      string
		completed bool
		refunded  bool
		want      string
	}{
		{"fresh record", false, false, StatusPending},
		{"completed", true, false, StatusSuccessful},
		{"refunded", true, true, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{IsCompleted: tt.completed, IsRefunded: tt.refunded}
			if got := tx.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}
