package emailsvc

import (
	"bytes"
	"embed"
	"path"
	"strings"
	"sync"
	"text/template"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	templates map[string]*template.Template
	tmplErr   error
	tmplInit  sync.Once
)

type contextData struct {
	AppName string
	Data    interface{}
}

func parseTemplates() {
	templates = make(map[string]*template.Template)

	names, err := templateFS.ReadDir("templates")
	if err != nil {
		tmplErr = errors.Wrap(err, "listing email templates")
		return
	}
	for _, entry := range names {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.ParseFS(templateFS, "templates/_base.txt", path.Join("templates", fname))
		if err != nil {
			tmplErr = errors.Wrapf(err, "parsing %s", fname)
			return
		}
		templates[strings.TrimSuffix(fname, ".txt")] = tmpl.Option("missingkey=error")
	}
}

// render fills msg.TextContent from its body or its template.
func render(msg *core.EmailMessage, appName string) error {
	if msg.BodyStr != "" {
		msg.TextContent = msg.BodyStr
		return nil
	} else if msg.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates) // only parse once
	if tmplErr != nil {
		return tmplErr
	}
	tmpl, ok := templates[msg.TemplateName]
	if !ok {
		return errors.Errorf("unknown email template %q", msg.TemplateName)
	}

	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", contextData{AppName: appName, Data: msg.TemplateData}); err != nil {
		return errors.Wrapf(err, "rendering %s", msg.TemplateName)
	}
	msg.TextContent = buff.String()
	return nil
}
