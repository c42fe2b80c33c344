package inventory

import "testing"

func projectionFixture() []Machine {
	return []Machine{
		NewMachine("Cutter A", StatusRunning),
		NewMachine("Press B", StatusIdle),
		NewMachine("Lathe C", StatusRunning),
		NewMachine("Welder D", StatusOffline),
	}
}

func TestProject(t *testing.T) {
	machines := projectionFixture()

	tests := []struct {
		name      string
		filter    string
		query     string
		wantNames []string
	}{
		{
			name:      "all filter empty query returns everything in order",
			filter:    FilterAll,
			query:     "",
			wantNames: []string{"Cutter A", "Press B", "Lathe C", "Welder D"},
		},
		{
			name:      "empty filter behaves like ALL",
			filter:    "",
			query:     "",
			wantNames: []string{"Cutter A", "Press B", "Lathe C", "Welder D"},
		},
		{
			name:      "status filter preserves order",
			filter:    string(StatusRunning),
			query:     "",
			wantNames: []string{"Cutter A", "Lathe C"},
		},
		{
			name:      "case-insensitive substring match",
			filter:    FilterAll,
			query:     "cutt",
			wantNames: []string{"Cutter A"},
		},
		{
			name:      "query with no matches",
			filter:    FilterAll,
			query:     "zzz",
			wantNames: []string{},
		},
		{
			name:      "filter and query combine",
			filter:    string(StatusRunning),
			query:     "lathe",
			wantNames: []string{"Lathe C"},
		},
		{
			name:      "query does not match across status filter",
			filter:    string(StatusIdle),
			query:     "cutt",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(machines, tt.filter, tt.query)
			if !equalNames(tt.wantNames, names(got)) {
				t.Fatalf("Project() = %v, want %v", names(got), tt.wantNames)
			}
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	machines := projectionFixture()
	want := names(machines)

	_ = Project(machines, string(StatusRunning), "a")

	if !equalNames(want, names(machines)) {
		t.Fatal("Project() mutated its input")
	}
}
