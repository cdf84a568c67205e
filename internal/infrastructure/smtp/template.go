package smtp

import "fmt"

// otpEmailTemplate is the styled OTP email body. Layout kept deliberately
// inline-styled so it survives strict email clients.
const otpEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%[1]s</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .container { background-color: #f9f9f9; border-radius: 5px; padding: 20px; box-shadow: 0 2px 5px rgba(0, 0, 0, 0.1); }
        h1 { color: #2c3e50; }
        .otp-code { font-size: 32px; font-weight: bold; color: #3498db; letter-spacing: 5px; text-align: center; margin: 20px 0; }
        .footer { margin-top: 20px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%[1]s</h1>
        <p>Dear User,</p>
        <p>Please use the following One-Time Password (OTP):</p>
        <div class="otp-code">%[2]s</div>
        <p>This OTP is valid for %[3]d minutes. Please do not share this code with anyone.</p>
        <p>If you didn't request this OTP, please ignore this email.</p>
        <p>Best regards,<br>Foocipe</p>
    </div>
    <div class="footer">
        This is an automated message. Please do not reply to this email.
    </div>
</body>
</html>`

// OTPEmailHTML builds the HTML body for an OTP email with the given heading.
func OTPEmailHTML(heading, code string, validMinutes int) string {
	return fmt.Sprintf(otpEmailTemplate, heading, code, validMinutes)
}
