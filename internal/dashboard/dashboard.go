// Package dashboard composes role-gated widgets into an HTML page. Each
// widget owns a fetch unit; all widgets load concurrently and a failing
// widget shows its error without affecting the others.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/sync/errgroup"

	"github.com/aihavenlabs/pathwei-admin/internal/fetch"
	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/widget"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// NoData is shown by a widget whose retrieval returned nothing.
const NoData = "No data"

// Widget is one dashboard panel.
type Widget struct {
	Name     string
	Title    string
	Required types.Role

	body func(ctx context.Context, log logger.Logger) (template.HTML, error)
}

var (
	errorBody = template.Must(template.New("error").Parse(`<p class="widget-error" role="alert">{{.}}</p>`))
	emptyBody = template.HTML(`<p class="widget-empty">` + NoData + `</p>`)
)

// NewWidget builds a widget that loads its data with load and renders it
// with the body template. The template sees the loaded value as dot and has
// the sprig functions available. When empty reports true for the loaded
// value the widget shows NoData instead.
func NewWidget[T any](name, title string, required types.Role, load fetch.Func[T], body string, empty func(T) bool) Widget {
	tmpl := template.Must(template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(body))
	return Widget{
		Name:     name,
		Title:    title,
		Required: required,
		body: func(ctx context.Context, log logger.Logger) (template.HTML, error) {
			u := fetch.New(load, fetch.WithName[T](name), fetch.WithLogger[T](log))
			defer u.Close()

			res := u.Mount(ctx)
			var buf bytes.Buffer
			switch {
			case res.Err != nil:
				if err := errorBody.Execute(&buf, res.Err.Error()); err != nil {
					return "", err
				}
			case empty != nil && empty(res.Data):
				return emptyBody, nil
			default:
				if err := tmpl.Execute(&buf, res.Data); err != nil {
					return "", fmt.Errorf("rendering widget %s: %w", name, err)
				}
			}
			return template.HTML(buf.String()), nil
		},
	}
}

// Panel is a rendered widget.
type Panel struct {
	Name   string
	Title  string
	Locked bool
	Body   template.HTML
}

// Dashboard renders a fixed set of widgets.
type Dashboard struct {
	widgets []Widget
	log     logger.Logger
}

// New creates a dashboard showing widgets in order.
func New(widgets []Widget, log logger.Logger) *Dashboard {
	if log == nil {
		log = logger.Default()
	}
	return &Dashboard{widgets: widgets, log: log}
}

// Panels loads every widget concurrently and wraps each body in the widget
// gate for role. Retrieval failures are rendered into the panel; the returned
// error reports template failures only.
func (d *Dashboard) Panels(ctx context.Context, role types.Role) ([]Panel, error) {
	panels := make([]Panel, len(d.widgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range d.widgets {
		g.Go(func() error {
			body, err := w.body(gctx, d.log)
			if err != nil {
				return err
			}
			gate := widget.Gate{Required: w.Required, User: role}
			var buf bytes.Buffer
			if err := widget.Render(&buf, gate, body); err != nil {
				return err
			}
			panels[i] = Panel{
				Name:   w.Name,
				Title:  w.Title,
				Locked: !gate.Allowed(),
				Body:   template.HTML(buf.String()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return panels, nil
}

const pageTmpl = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main class="dashboard" data-role="{{.Role}}">
{{- range .Panels}}
<section class="widget{{if .Locked}} widget--locked{{end}}" id="widget-{{.Name}}">
<h2>{{.Title}}</h2>
{{.Body}}
</section>
{{- end}}
</main>
</body>
</html>
`

var page = template.Must(template.New("page").Funcs(sprig.HtmlFuncMap()).Parse(pageTmpl))

// Render writes the dashboard page as seen by role.
func (d *Dashboard) Render(ctx context.Context, w io.Writer, role types.Role) error {
	panels, err := d.Panels(ctx, role)
	if err != nil {
		return err
	}
	data := struct {
		Title  string
		Role   types.Role
		Panels []Panel
	}{"Pathwei admin", role, panels}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	d.log.Debug("dashboard rendered", "role", role, "widgets", len(panels))
	return nil
}
