package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/internal/sqlite"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

func seededSource(t *testing.T) Source {
	t.Helper()
	b := sqlite.NewBackend(logger.Nop())
	cfg := types.DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { _ = b.Detach() })
	_, err := b.Seed(context.Background())
	require.NoError(t, err)
	return Source{
		Stats:       b.Stats,
		LocaleStats: b.LocaleStats,
		Users:       b.Users(),
		Experiments: b.Experiments(),
	}
}

func panelByName(t *testing.T, panels []Panel, name string) Panel {
	t.Helper()
	for _, p := range panels {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("panel %s not found", name)
	return Panel{}
}

func TestPanels_AdminSeesEverything(t *testing.T) {
	d := New(Standard(seededSource(t)), logger.Nop())

	panels, err := d.Panels(context.Background(), types.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, panels, 4)
	assert.Equal(t, []string{WidgetStats, WidgetUsers, WidgetPriceTests, WidgetLocales},
		[]string{panels[0].Name, panels[1].Name, panels[2].Name, panels[3].Name})

	for _, p := range panels {
		assert.False(t, p.Locked, p.Name)
		assert.NotContains(t, string(p.Body), "widget-gate--locked", p.Name)
	}
	assert.Contains(t, string(panelByName(t, panels, WidgetStats).Body), "<dt>Users</dt><dd>12")
	assert.Contains(t, string(panelByName(t, panels, WidgetUsers).Body), "12 users in total")
}

func TestPanels_ViewerGetsLockedWidgets(t *testing.T) {
	d := New(Standard(seededSource(t)), logger.Nop())

	panels, err := d.Panels(context.Background(), types.RoleViewer)
	require.NoError(t, err)

	stats := panelByName(t, panels, WidgetStats)
	assert.False(t, stats.Locked)

	users := panelByName(t, panels, WidgetUsers)
	assert.True(t, users.Locked)
	body := string(users.Body)
	assert.Contains(t, body, "Admin access required")
	assert.Contains(t, body, "<table class=\"users\">", "content stays under the overlay")

	assert.Contains(t, string(panelByName(t, panels, WidgetPriceTests).Body), "Manager access required")
	assert.Contains(t, string(panelByName(t, panels, WidgetLocales).Body), "Editor access required")
}

func TestPanels_UnknownRoleIsLockedOut(t *testing.T) {
	d := New(Standard(seededSource(t)), logger.Nop())

	panels, err := d.Panels(context.Background(), types.Role("superuser"))
	require.NoError(t, err)
	for _, p := range panels {
		assert.True(t, p.Locked, p.Name)
	}
}

func TestWidget_ErrorAndEmptyStates(t *testing.T) {
	failing := NewWidget("broken", "Broken", types.RoleAll,
		func(context.Context) (int, error) { return 0, errors.New("stats <offline>") },
		`{{.}}`, nil)
	empty := NewWidget("empty", "Empty", types.RoleAll,
		func(context.Context) ([]string, error) { return nil, nil },
		`{{range .}}{{.}}{{end}}`,
		func(s []string) bool { return len(s) == 0 })
	panicking := NewWidget("panicky", "Panicky", types.RoleAll,
		func(context.Context) (int, error) { panic("kaboom") },
		`{{.}}`, nil)

	panels, err := New([]Widget{failing, empty, panicking}, logger.Nop()).Panels(context.Background(), types.RoleViewer)
	require.NoError(t, err)

	assert.Contains(t, string(panels[0].Body), `class="widget-error"`)
	assert.Contains(t, string(panels[0].Body), "stats &lt;offline&gt;")
	assert.Contains(t, string(panels[1].Body), NoData)
	assert.Contains(t, string(panels[2].Body), "kaboom")
}

func TestWidget_TemplateErrorFailsRender(t *testing.T) {
	bad := NewWidget("bad", "Bad", types.RoleAll,
		func(context.Context) (int, error) { return 1, nil },
		`{{.Missing}}`, nil)

	_, err := New([]Widget{bad}, logger.Nop()).Panels(context.Background(), types.RoleAdmin)
	assert.Error(t, err)
}

func TestWidgets_LoadConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	slow := func(context.Context) (int, error) {
		started <- struct{}{}
		<-release
		return 1, nil
	}
	d := New([]Widget{
		NewWidget("a", "A", types.RoleAll, slow, `{{.}}`, nil),
		NewWidget("b", "B", types.RoleAll, slow, `{{.}}`, nil),
	}, logger.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := d.Panels(context.Background(), types.RoleAll)
		done <- err
	}()
	for range 2 {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("widgets did not load concurrently")
		}
	}
	close(release)
	require.NoError(t, <-done)
}

func TestRender_Page(t *testing.T) {
	d := New(Standard(seededSource(t)), logger.Nop())
	var sb strings.Builder
	require.NoError(t, d.Render(context.Background(), &sb, types.RoleManager))

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `data-role="manager"`)
	assert.Contains(t, out, `id="widget-users"`)
	assert.Contains(t, out, "widget--locked")
	assert.Contains(t, out, "<h2>Price tests</h2>")
}

func TestStandard_SkipsMissingSources(t *testing.T) {
	ws := Standard(Source{Stats: func(context.Context) (types.Stats, error) { return types.Stats{}, nil }})
	require.Len(t, ws, 1)
	assert.Equal(t, WidgetStats, ws[0].Name)
}
