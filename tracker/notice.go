package tracker

import (
	"fmt"
	"time"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is the dismissible banner shown above the donation form. It
// disappears on its own once ExpiresAt has passed.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Text      string     `json:"text"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

func (n *Notice) expired(now time.Time) bool {
	return n == nil || (!n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt))
}

const genericSubmissionFailure = "Donation failed. Please try again."

func initiatedText(serverMessage string) string {
	if serverMessage == "" {
		return "M-Pesa payment initiated!"
	}
	return "M-Pesa payment initiated! " + serverMessage
}

func paidText(transactionCode string) string {
	if transactionCode == "" {
		transactionCode = "N/A"
	}
	return fmt.Sprintf("Payment completed successfully! Transaction: %s. Thank you for your donation.", transactionCode)
}

const (
	failedText        = "Payment failed. Please try again."
	cardText          = "Donation created! Please complete your card payment."
	trackingTimedText = "We could not confirm your payment yet. Check the status again or clear the payment history."
)
