package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/pkg/errors"
)

// Template names an email; each has a .txt and a .html file under templates/.
type Template string

const (
	TemplateReferralConfirmation Template = "referral_confirmation"
)

var subjects = map[Template]string{
	TemplateReferralConfirmation: "Course Referral Confirmation",
}

//go:embed templates/*
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
)

// Render executes both bodies of the named template.
func Render(name Template, data map[string]string) (subject, text, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", "", errors.Errorf("unknown email template %q", name)
	}

	var textBody bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&textBody, string(name)+".txt", data); err != nil {
		return "", "", "", errors.Wrapf(err, "failed to execute text template %s", name)
	}

	var htmlBody bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&htmlBody, string(name)+".html", data); err != nil {
		return "", "", "", errors.Wrapf(err, "failed to execute html template %s", name)
	}

	return subject, string(bytes.TrimSpace(textBody.Bytes())), htmlBody.String(), nil
}
