package types

import "testing"

func TestRoleMeets(t *testing.T) {
	tests := []struct {
		user     Role
		required Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleViewer, true},
		{RoleManager, RoleAdmin, false},
		{RoleEditor, RoleManager, false},
		{RoleViewer, RoleViewer, true},
		{RoleAll, RoleAll, true},
		{RoleAll, RoleViewer, false},
		{"Admin", RoleViewer, false},
		{RoleAdmin, "owner", false},
		{"", RoleAll, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.user)+">="+string(tt.required), func(t *testing.T) {
			if got := tt.user.Meets(tt.required); got != tt.want {
				t.Errorf("Role(%q).Meets(%q) = %v, want %v", tt.user, tt.required, got, tt.want)
			}
		})
	}
}

func TestRolesOrderedByRank(t *testing.T) {
	prev := 1 << 30
	for _, r := range Roles {
		rank, ok := r.Rank()
		if !ok {
			t.Fatalf("Roles contains unknown role %q", r)
		}
		if rank >= prev {
			t.Errorf("role %q rank %d not below previous %d", r, rank, prev)
		}
		prev = rank
	}
}
