package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// SeedResult counts the records Seed inserted.
type SeedResult struct {
	Users       int `json:"users"`
	Subscribers int `json:"subscribers"`
	Experiments int `json:"experiments"`
}

var demoLocales = []string{"en", "en-GB", "de", "fr", "es", "ja", "pt-BR"}

var demoNames = []string{
	"Ada Lovelace", "Grace Hopper", "Alan Turing", "Katherine Johnson",
	"Edsger Dijkstra", "Barbara Liskov", "Donald Knuth", "Margaret Hamilton",
	"Ken Thompson", "Frances Allen", "John McCarthy", "Radia Perlman",
}

var demoRoles = []types.Role{types.RoleAdmin, types.RoleManager, types.RoleEditor, types.RoleViewer}

var demoSources = []string{"landing", "blog", "pricing", "referral"}

type demoExperiment struct {
	name        string
	variant     string
	priceCents  int
	locale      string
	views       int
	conversions int
}

var demoExperiments = []demoExperiment{
	{"pro-monthly", "control", 999, "en", 4200, 168},
	{"pro-monthly", "higher", 1299, "en", 4100, 131},
	{"pro-monthly", "control", 899, "de", 1800, 81},
	{"pro-monthly", "higher", 1199, "de", 1750, 63},
	{"lifetime", "control", 14900, "en", 900, 18},
	{"lifetime", "discount", 9900, "en", 950, 31},
}

// Seed fills an empty store with demo users, subscribers and price
// experiments. It does nothing when users already exist.
func (b *Backend) Seed(ctx context.Context) (SeedResult, error) {
	stats, err := b.Stats(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if stats.Users > 0 {
		return SeedResult{}, nil
	}

	var res SeedResult
	base := b.now().UTC().Add(-time.Duration(len(demoNames)) * time.Hour)

	for i, name := range demoNames {
		u := types.User{
			Email:     fmt.Sprintf("user%02d@pathwei.test", i+1),
			Name:      name,
			Role:      demoRoles[i%len(demoRoles)],
			Locale:    demoLocales[i%len(demoLocales)],
			Active:    i%5 != 4,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if _, err := b.users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("seeding user %s: %w", u.Email, err)
		}
		res.Users++
	}

	for i := range 30 {
		s := types.Subscriber{
			Email:      fmt.Sprintf("reader%02d@pathwei.test", i+1),
			Locale:     demoLocales[(i*3)%len(demoLocales)],
			Subscribed: i%7 != 6,
			Source:     demoSources[i%len(demoSources)],
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := b.subscribers.Create(ctx, s); err != nil {
			return res, fmt.Errorf("seeding subscriber %s: %w", s.Email, err)
		}
		res.Subscribers++
	}

	for i, d := range demoExperiments {
		e := types.PriceExperiment{
			Name:        d.name,
			Variant:     d.variant,
			PriceCents:  d.priceCents,
			Locale:      d.locale,
			Views:       d.views,
			Conversions: d.conversions,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if _, err := b.experiments.Create(ctx, e); err != nil {
			return res, fmt.Errorf("seeding experiment %s/%s: %w", d.name, d.variant, err)
		}
		res.Experiments++
	}

	b.log.Info("seeded store", "users", res.Users, "subscribers", res.Subscribers, "experiments", res.Experiments)
	return res, nil
}
