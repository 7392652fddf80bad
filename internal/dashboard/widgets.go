package dashboard

import (
	"context"

	"github.com/aihavenlabs/pathwei-admin/internal/fetch"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// Source supplies the data behind the standard widgets. Both the local store
// and the REST client can fill it in.
type Source struct {
	Stats       func(ctx context.Context) (types.Stats, error)
	LocaleStats func(ctx context.Context) ([]types.LocaleStat, error)
	Users       types.Collection[types.User]
	Experiments types.Collection[types.PriceExperiment]
}

// Widget names.
const (
	WidgetStats      = "stats"
	WidgetUsers      = "users"
	WidgetPriceTests = "price-tests"
	WidgetLocales    = "locales"
)

// recentLimit is the number of rows shown by the list widgets.
const recentLimit = 5

const statsBody = `<dl class="stats">` +
	`<dt>Users</dt><dd>{{.Users}} <small>({{.ActiveUsers}} active)</small></dd>` +
	`<dt>Subscribers</dt><dd>{{.Subscribers}} <small>({{.ActiveSubscribers}} subscribed)</small></dd>` +
	`<dt>Price tests</dt><dd>{{.Experiments}}</dd>` +
	`</dl>`

const usersBody = `<table class="users"><thead><tr><th>Name</th><th>Email</th><th>Role</th><th>Locale</th><th>Joined</th></tr></thead><tbody>` +
	`{{range .Data}}<tr><td>{{.Name}}</td><td>{{.Email}}</td><td>{{.Role | toString | title}}</td><td>{{.Locale | upper}}</td><td>{{.CreatedAt | date "2006-01-02"}}</td></tr>{{end}}` +
	`</tbody></table><p class="widget-footer">{{.Pagination.TotalItems}} users in total</p>`

const priceTestsBody = `<table class="price-tests"><thead><tr><th>Test</th><th>Variant</th><th>Price</th><th>Views</th><th>Conversion</th></tr></thead><tbody>` +
	`{{range .Data}}<tr><td>{{.Name}}</td><td>{{.Variant}}</td><td>{{divf .PriceCents 100 | printf "%.2f"}}</td><td>{{.Views}}</td><td>{{mulf .ConversionRate 100 | printf "%.1f%%"}}</td></tr>{{end}}` +
	`</tbody></table>`

const localesBody = `<ul class="locales">` +
	`{{range .}}<li><strong>{{.Locale | upper}}</strong> {{.Users}} {{if eq .Users 1}}user{{else}}users{{end}}, {{.Subscribers}} {{if eq .Subscribers 1}}subscriber{{else}}subscribers{{end}}</li>{{end}}` +
	`</ul>`

// Standard returns the dashboard widgets for src. Widgets whose data source
// is nil are left out.
func Standard(src Source) []Widget {
	var ws []Widget
	if src.Stats != nil {
		ws = append(ws, NewWidget(WidgetStats, "Overview", types.RoleViewer, fetch.Func[types.Stats](src.Stats), statsBody, nil))
	}
	if src.Users != nil {
		users := src.Users
		ws = append(ws, NewWidget(WidgetUsers, "Recent users", types.RoleAdmin,
			func(ctx context.Context) (types.PageResult[types.User], error) {
				return users.List(ctx, types.ListQuery{Page: 1, Limit: recentLimit})
			},
			usersBody,
			func(p types.PageResult[types.User]) bool { return len(p.Data) == 0 },
		))
	}
	if src.Experiments != nil {
		experiments := src.Experiments
		ws = append(ws, NewWidget(WidgetPriceTests, "Price tests", types.RoleManager,
			func(ctx context.Context) (types.PageResult[types.PriceExperiment], error) {
				return experiments.List(ctx, types.ListQuery{Page: 1, Limit: 2 * recentLimit})
			},
			priceTestsBody,
			func(p types.PageResult[types.PriceExperiment]) bool { return len(p.Data) == 0 },
		))
	}
	if src.LocaleStats != nil {
		ws = append(ws, NewWidget(WidgetLocales, "Locales", types.RoleEditor,
			fetch.Func[[]types.LocaleStat](src.LocaleStats),
			localesBody,
			func(s []types.LocaleStat) bool { return len(s) == 0 },
		))
	}
	return ws
}
