// Package widget renders role-gated dashboard containers.
//
// The gate is a display decision only. Locked content is still written to
// the output underneath the lock overlay, so it must never be used as an
// authorization boundary. Real access control belongs on the server.
package widget

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Gate pairs the role a widget requires with the role of the viewer. Empty
// roles mean types.RoleAll.
type Gate struct {
	Required types.Role
	User     types.Role
}

// Allowed reports whether the viewer's role ranks at or above the required
// role. Unknown roles are never allowed.
func (g Gate) Allowed() bool {
	return orAll(g.User).Meets(orAll(g.Required))
}

// LockMessage is the text shown on the lock overlay.
func (g Gate) LockMessage() string {
	return lockMessage(orAll(g.Required))
}

func orAll(r types.Role) types.Role {
	if r == "" {
		return types.RoleAll
	}
	return r
}

const lockedTmpl = `<div class="widget-gate widget-gate--locked" data-required-role="{{.Required}}">` +
	`<div class="widget-gate__content" style="filter: blur(4px); pointer-events: none; user-select: none;" aria-hidden="true">{{.Content}}</div>` +
	`<div class="widget-gate__overlay" role="note"><span class="widget-gate__lock" aria-hidden="true">&#128274;</span>` +
	`<p>{{template "lockMessage" .Required}}</p></div></div>`

const messageTmpl = `{{define "lockMessage"}}{{. | toString | title}} access required{{end}}`

var locked = template.Must(template.Must(
	template.New("locked").Funcs(sprig.HtmlFuncMap()).Parse(messageTmpl)).Parse(lockedTmpl))

func lockMessage(required types.Role) string {
	var sb strings.Builder
	if err := locked.ExecuteTemplate(&sb, "lockMessage", required); err != nil {
		return fmt.Sprintf("%s access required", required)
	}
	return sb.String()
}

// Render writes content unchanged when the gate allows it. Otherwise it
// writes the content inside a blurred container stacked under a lock
// overlay reading "<Role> access required".
func Render(w io.Writer, g Gate, content template.HTML) error {
	if g.Allowed() {
		_, err := io.WriteString(w, string(content))
		return err
	}
	data := struct {
		Required types.Role
		Content  template.HTML
	}{orAll(g.Required), content}
	if err := locked.Execute(w, data); err != nil {
		return fmt.Errorf("rendering locked widget: %w", err)
	}
	return nil
}
