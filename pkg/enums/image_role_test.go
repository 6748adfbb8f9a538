package enums

import "testing"

func TestParseImageRole(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageRole
		wantErr bool
	}{
		{in: "hero", want: ImageRoleHero},
		{in: "gallery", want: ImageRoleGallery},
		{in: "HERO", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseImageRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseImageRole(%q) = %q, %v", tt.in, got, err)
		}
		if !got.IsValid() {
			t.Fatalf("expected %q to be valid", got)
		}
	}
}

func TestRegenerationStagesOrder(t *testing.T) {
	if RegenerationStages[0] != StageFetching {
		t.Fatalf("expected fetching first, got %s", RegenerationStages[0])
	}
	if RegenerationStages[len(RegenerationStages)-1] != StageRevalidating {
		t.Fatalf("expected revalidating last, got %s", RegenerationStages[len(RegenerationStages)-1])
	}
	for _, stage := range RegenerationStages {
		if stage.IsTerminal() {
			t.Fatalf("stage %s should not be terminal", stage)
		}
	}
	if !StageDone.IsTerminal() || !StageFailed.IsTerminal() {
		t.Fatal("done and failed must be terminal")
	}
}
