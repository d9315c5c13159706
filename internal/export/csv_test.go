package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agrunetcore/farmhub/types"
)

func TestWriteEmpty(t *testing.T) {
	var sb strings.Builder
	err := Write(&sb, nil)
	if !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", sb.String())
	}
}

func TestWriteQuotesEveryField(t *testing.T) {
	farmers := []types.Farmer{
		{
			Name:      "Abdi Hassan",
			Email:     "abdi@example.com",
			Phone:     "0911-000000",
			Subcity:   "Bole",
			FarmName:  `Green "Acres", East`,
			FarmType:  "Crops",
			FarmSize:  "10",
			CreatedAt: "2026-01-10T08:00:00Z",
		},
	}

	var sb strings.Builder
	if err := Write(&sb, farmers); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := sb.String()

	want := `"Name","Email","Phone","Subcity","Farm Name","Farm Type","Farm Size","Registered"` + "\n" +
		`"Abdi Hassan","abdi@example.com","0911-000000","Bole","Green ""Acres"", East","Crops","10","2026-01-10T08:00:00Z"`
	if got != want {
		t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("output must not end with a newline")
	}
}

func TestWriteRowOrder(t *testing.T) {
	farmers := []types.Farmer{
		{Name: "First"},
		{Name: "Second"},
	}

	var sb strings.Builder
	if err := Write(&sb, farmers); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(sb.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"First"`) || !strings.HasPrefix(lines[2], `"Second"`) {
		t.Fatalf("rows out of order: %v", lines[1:])
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 28, 23, 30, 0, 0, time.FixedZone("EAT", 3*60*60))
	if got := Filename(at); got != "farmers_2026-08-28.csv" {
		t.Fatalf("expected UTC date in filename, got %q", got)
	}
}
