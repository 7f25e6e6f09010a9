// Package notification delivers password reset messages to users. The
// service itself never sends email; it hands the message to a downstream
// consumer over Kafka, or logs it when no broker is configured.
package notification

import "fmt"

// ResetPasswordMessage is the payload published for every reset request.
type ResetPasswordMessage struct {
	Type     string `json:"type"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	ResetURL string `json:"resetUrl,omitempty"`
}

const typeResetPassword = "reset_password"

// resetURL builds the link embedded in the reset email. Empty when no
// frontend URL is configured; the consumer then renders the raw token.
func resetURL(frontendURL, token string) string {
	if frontendURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/reset-password?token=%s", frontendURL, token)
}
