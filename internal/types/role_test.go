package types

import "testing"

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		name    string
		jobRole string
		want    RoleCategory
	}{
		{"plain tech role", "Backend Engineer", RoleCategoryTech},
		{"frontend role", "Frontend Developer", RoleCategoryTech},
		{"writer keyword", "Technical Writer", RoleCategoryContent},
		{"content keyword", "Content Strategist", RoleCategoryContent},
		{"editor keyword", "Video Editor", RoleCategoryContent},
		{"uppercase keyword", "UX WRITER", RoleCategoryContent},
		{"mixed case", "CoNtEnT Designer", RoleCategoryContent},
		{"keyword inside word", "Ghostwriter", RoleCategoryContent},
		{"empty role", "", RoleCategoryTech},
		{"unrelated role", "Accountant", RoleCategoryTech},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyRole(tt.jobRole)
			if got != tt.want {
				t.Errorf("ClassifyRole(%q) = %q, want %q", tt.jobRole, got, tt.want)
			}
		})
	}
}
