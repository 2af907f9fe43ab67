package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Verification Code</title>
</head>
<body style="font-family: Roboto, Verdana, sans-serif; background-color: #f6f9fc; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px 0 48px; background-color: #ffffff;">
		<h2 style="font-size: 24px; margin: 40px 0 0;">Hello {{.Username}},</h2>
		<p style="font-size: 16px; margin: 24px 0;">
			Thank you for registering. Please use the following verification
			code to complete your registration:
		</p>
		<p style="background-color: #f4f4f4; border-radius: 4px; font-size: 24px; font-weight: bold; letter-spacing: 4px; margin: 16px 0; padding: 12px; text-align: center;">{{.OTP}}</p>
		<p style="font-size: 16px; margin: 24px 0;">
			If you did not request this code, please ignore this email.
		</p>
	</div>
</body>
</html>`))

// RenderVerificationEmail produces the HTML and plain-text bodies for the
// one-time-code email.
func RenderVerificationEmail(username, otp string) (htmlBody, textBody string, err error) {
	data := struct {
		Username string
		OTP      string
	}{
		Username: username,
		OTP:      otp,
	}

	var buf strings.Builder
	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}

	text := fmt.Sprintf(
		"Hello %s,\n\nThank you for registering. Please use the following verification code to complete your registration:\n\n%s\n\nIf you did not request this code, please ignore this email.\n",
		username, otp)

	return buf.String(), text, nil
}
