package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func entries(amounts ...int64) []*Payment {
	out := make([]*Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, &Payment{Amount: a})
	}
	return out
}

func TestRecompute(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 30)
	past := now.AddDate(0, 0, -1)
	sent := now.AddDate(0, 0, -5)
	viewed := now.AddDate(0, 0, -4)

	tests := []struct {
		name     string
		in       RecomputeInput
		wantPaid int64
		wantDue  int64
		want     Status
	}{
		{"unsent without payments is draft", RecomputeInput{TotalAmount: 405000, DueDate: future, Now: now}, 0, 405000, StatusDraft},
		{"sent without payments", RecomputeInput{TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 0, 405000, StatusSent},
		{"viewed without payments", RecomputeInput{TotalAmount: 405000, DueDate: future, SentAt: &sent, ViewedAt: &viewed, Now: now}, 0, 405000, StatusViewed},
		{"partial payment", RecomputeInput{Payments: entries(200000), TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 200000, 205000, StatusPartiallyPaid},
		{"paid in full", RecomputeInput{Payments: entries(200000, 205000), TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 405000, 0, StatusPaid},
		{"paid overrides overdue", RecomputeInput{Payments: entries(405000), TotalAmount: 405000, DueDate: past, SentAt: &sent, Now: now}, 405000, 0, StatusPaid},
		{"sent past due is overdue", RecomputeInput{TotalAmount: 405000, DueDate: past, SentAt: &sent, Now: now}, 0, 405000, StatusOverdue},
		{"partial past due is overdue", RecomputeInput{Payments: entries(1000), TotalAmount: 405000, DueDate: past, SentAt: &sent, Now: now}, 1000, 404000, StatusOverdue},
		{"draft past due stays draft", RecomputeInput{TotalAmount: 405000, DueDate: past, Now: now}, 0, 405000, StatusDraft},
		{"reversed payment nets out", RecomputeInput{Payments: entries(200000, -200000), TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 0, 405000, StatusSent},
		{"refund reopens balance", RecomputeInput{Payments: entries(405000, -8550), TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 396450, 8550, StatusPartiallyPaid},
		{"due is clamped at zero", RecomputeInput{Payments: entries(500000), TotalAmount: 405000, DueDate: future, SentAt: &sent, Now: now}, 500000, 0, StatusPaid},
		{"exactly at due date is not overdue", RecomputeInput{TotalAmount: 100, DueDate: now, SentAt: &sent, Now: now}, 0, 100, StatusSent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recompute(tt.in)
			assert.Equal(t, tt.wantPaid, got.AmountPaid)
			assert.Equal(t, tt.wantDue, got.AmountDue)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}
