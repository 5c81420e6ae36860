package email

import (
	"strings"

	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Subjects of the messages sent by the application.
const (
	ResetPasswordSubject = "Password Reset Request"
	signature            = "Sparx Team"
)

// ResetPasswordEmail renders the body of the password reset message.
func ResetPasswordEmail(name, resetURL string) gomponents.Node {
	return html.Div(
		html.H2(gomponents.Text("Hello "+name)),
		html.P(gomponents.Text("Please use the url below to reset your password")),
		html.P(gomponents.Text("This reset link will be valid for only 30 minutes.")),
		html.A(
			html.Href(resetURL),
			gomponents.Attr("clicktracking", "off"),
			gomponents.Text(resetURL),
		),
		html.P(gomponents.Text("Regards...")),
		html.P(gomponents.Text(signature)),
	)
}

// ContactSupportEmail renders a message a user sends to support.
func ContactSupportEmail(fromName, fromEmail, message string) gomponents.Node {
	return html.Div(
		html.H3(gomponents.Textf("Message from %s <%s>", fromName, fromEmail)),
		gomponents.Map(strings.Split(message, "\n"), func(line string) gomponents.Node {
			return html.P(gomponents.Text(line))
		}),
	)
}

// Render renders a node to an HTML string.
func Render(node gomponents.Node) (string, error) {
	var b strings.Builder
	if err := node.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
