package email

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/getcalls/website/pkg/logger"
)

//go:embed templates
var templatesFS embed.FS

// DefaultLayout wraps every rendered template.
const DefaultLayout = "base"

// subjects are Handlebars subject lines per template.
var subjects = map[string]string{
	TemplateLeadNotification: "New lead: {{from_name}} ({{business_type}})",
	TemplateLeadConfirmation: "Thanks {{user_name}}, we got your request",
}

// TemplateService renders the embedded Handlebars templates. Parsed
// templates are cached after first use.
type TemplateService struct {
	fsys fs.FS
	log  *slog.Logger

	mu        sync.Mutex
	templates map[string]*raymond.Template
	layouts   map[string]*raymond.Template
}

// Rendered is a rendered email body.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// NewTemplateService uses the templates compiled into the binary.
func NewTemplateService(log *slog.Logger) *TemplateService {
	sub, _ := fs.Sub(templatesFS, "templates")
	return NewTemplateServiceFS(sub, log)
}

// NewTemplateServiceFS reads templates from fsys: *.hbs at the root and
// layouts/*.hbs.
func NewTemplateServiceFS(fsys fs.FS, log *slog.Logger) *TemplateService {
	return &TemplateService{
		fsys:      fsys,
		log:       log.With(logger.Scope("email.template")),
		templates: make(map[string]*raymond.Template),
		layouts:   make(map[string]*raymond.Template),
	}
}

func (ts *TemplateService) load(cache map[string]*raymond.Template, file string) (*raymond.Template, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if tmpl, ok := cache[file]; ok {
		return tmpl, nil
	}
	content, err := fs.ReadFile(ts.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, file)
	}
	tmpl, err := raymond.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}
	cache[file] = tmpl
	return tmpl, nil
}

// Render renders template name with params, wrapped in layout when layout
// is non-empty and exists.
func (ts *TemplateService) Render(name string, params map[string]string, layout string) (*Rendered, error) {
	tmpl, err := ts.load(ts.templates, name+".hbs")
	if err != nil {
		return nil, err
	}

	ctx := make(map[string]any, len(params)+1)
	for k, v := range params {
		ctx[k] = v
	}

	body, err := tmpl.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}

	if layout != "" {
		lt, err := ts.load(ts.layouts, path.Join("layouts", layout+".hbs"))
		if err != nil {
			ts.log.Debug("layout not found, using template directly", slog.String("layout", layout))
		} else {
			layoutCtx := maps.Clone(ctx)
			layoutCtx["content"] = raymond.SafeString(body)
			if body, err = lt.Exec(layoutCtx); err != nil {
				return nil, fmt.Errorf("render layout %s: %w", layout, err)
			}
		}
	}

	subject := ""
	if src, ok := subjects[name]; ok {
		if subject, err = raymond.Render(src, ctx); err != nil {
			return nil, fmt.Errorf("render subject %s: %w", name, err)
		}
	}

	return &Rendered{
		Subject: subject,
		HTML:    body,
		Text:    PlainText(params),
	}, nil
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// PlainText renders params as "key: value" lines sorted by key, for the
// text/plain part.
func PlainText(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		fmt.Fprintf(&b, "%s: %s\n", label, tagRe.ReplaceAllString(params[k], ""))
	}
	return b.String()
}
