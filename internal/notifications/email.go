package notifications

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Subject is the subject line of the export-ready email.
const Subject = "USDR Full File Export"

const (
	emailTitle = "Full File Export"
	logoURL    = "https://grants.usdigitalresponse.org/usdr_logo_transparent.png"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/base.html", "templates/export_ready.html"))
	textTemplate  = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/export_ready.txt"))
)

// EmailData populates the export-ready email.
type EmailData struct {
	ToolName    string
	ArchiveURL  string
	ManifestURL string
}

type htmlData struct {
	EmailData
	Title   string
	LogoURL string
}

// Render produces the HTML body, plain-text body, and subject for data.
func Render(data EmailData) (html, text, subject string, err error) {
	var htmlBuf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&htmlBuf, "base", htmlData{EmailData: data, Title: emailTitle, LogoURL: logoURL}); err != nil {
		return "", "", "", fmt.Errorf("render html email: %w", err)
	}
	var textBuf bytes.Buffer
	if err := textTemplate.Execute(&textBuf, data); err != nil {
		return "", "", "", fmt.Errorf("render text email: %w", err)
	}
	return htmlBuf.String(), textBuf.String(), Subject, nil
}
