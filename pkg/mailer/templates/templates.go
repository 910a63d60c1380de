package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names carried in mailer.EmailJob.Template.
const (
	VerifyOTP       = "verify_otp"
	ResendOTP       = "resend_otp"
	ResetToken      = "reset_token"
	PasswordReset   = "password_reset"
	PasswordChanged = "password_changed"
)

const (
	templateSuffix  = ".tmpl"
	blockSubject    = "subject"
	blockText       = "text"
	blockHTML       = "html"
	defaultAppName  = "Shop"
	defaultFallback = "there"
)

var funcs = map[string]any{
	"default": defaultFn,
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return fallback
	}
	return value
}

// Names lists the available templates.
func Names() []string {
	return []string{VerifyOTP, ResendOTP, ResetToken, PasswordReset, PasswordChanged}
}

// Data builds the template data map. Extra keys may be added by callers.
func Data(name, code string, expiresInMinutes int) map[string]any {
	return map[string]any{
		"Name":             name,
		"Code":             code,
		"ExpiresInMinutes": expiresInMinutes,
		"AppName":          defaultAppName,
		"Fallback":         defaultFallback,
	}
}

// Render executes the subject, text and html blocks of the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	file := name + templateSuffix
	raw, err := FS.ReadFile(file)
	if err != nil {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}

	tt, err := texttpl.New(file).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return "", "", "", err
	}
	ht, err := htmpl.New(file).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return "", "", "", err
	}

	var sb, tb, hb bytes.Buffer
	if err := tt.ExecuteTemplate(&sb, blockSubject, data); err != nil {
		return "", "", "", err
	}
	if err := tt.ExecuteTemplate(&tb, blockText, data); err != nil {
		return "", "", "", err
	}
	if err := ht.ExecuteTemplate(&hb, blockHTML, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(tb.String()), strings.TrimSpace(hb.String()), nil
}
