package service

import "fmt"

func passwordResetEmailTemplate(resetURL, appName, name string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

You requested to reset your password. Click this link to choose a new one:
%s

This link expires in 1 hour and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, name, resetURL, appName)

	return subject, body
}

func welcomeEmailTemplate(appName, name string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Add the books you're reading, post reviews, and join a club to read along with others.

If you have questions, just reply to this email.

Best,
The %s Team`, name, appName)

	return subject, body
}
