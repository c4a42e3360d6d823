package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-dashboard/internal/models"
	"pm-dashboard/internal/testutil"
)

const export = `[
  {"Kód:": "Z-001", "Název projektu": "Lis 400t", "Zákazník": "Strojírny a.s.", "Stav": "Ve výrobě",
   "Začátek": "1.3.2024", "Termín": "2024-06-30", "Počet kusů": 12, "Poznámka": "NaN", "Interní": "x"},
  {"kod": "Z-002", "nazev": "Dopravník", "stav": "", "mnozstvi": "NaN", "popis": "   "},
  {"Kód": "", "Název": "Bez kódu"},
  {"Kód": "Z-003", "Název": "Rám", "Stav": "ztraceno"}
]`

func TestNormalize(t *testing.T) {
	assert.Equal(t, "pocetkusu", Normalize("Počet kusů:"))
	assert.Equal(t, "kod", Normalize(" KÓD "))
	assert.Equal(t, "datumzahajeni", Normalize("Datum-zahájení"))
}

func TestDefaultLabels(t *testing.T) {
	col, ok := DefaultLabels.Column("Číslo zakázky")
	require.True(t, ok)
	assert.Equal(t, "id", col)

	st, ok := DefaultLabels.Status("HOTOVO")
	require.True(t, ok)
	assert.Equal(t, models.ProjectCompleted, st)

	st, ok = DefaultLabels.Status("production")
	require.True(t, ok)
	assert.Equal(t, models.ProjectProduction, st)
}

func TestParseLabelsRejectsConflicts(t *testing.T) {
	_, err := ParseLabels([]byte("fields:\n  title: [název]\n  note: [Nazev]\n"))
	assert.Error(t, err)

	_, err = ParseLabels([]byte("statuses:\n  archived: [archiv]\n"))
	assert.Error(t, err)
}

func TestMap(t *testing.T) {
	records, err := Parse(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, records, 4)

	im := New(nil, nil, testutil.Logger())

	p, unknown, err := im.Map(records[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Interní"}, unknown)
	assert.Equal(t, "Z-001", p.ID)
	assert.Equal(t, "Lis 400t", *p.Title)
	assert.Equal(t, models.ProjectProduction, p.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *p.StartDate)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *p.EndDate)
	assert.Equal(t, 12, *p.Quantity)
	assert.Nil(t, p.Note)

	p, _, err = im.Map(records[1])
	require.NoError(t, err)
	assert.Equal(t, models.ProjectPlanning, p.Status)
	assert.Nil(t, p.Quantity)
	assert.Nil(t, p.Description)

	_, _, err = im.Map(records[2])
	assert.Error(t, err)

	_, _, err = im.Map(records[3])
	assert.ErrorContains(t, err, "ztraceno")
}

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	im := New(db, nil, testutil.Logger())
	ctx := context.Background()

	records, err := Parse(strings.NewReader(export))
	require.NoError(t, err)

	rep, err := im.Run(ctx, "export.json", "admin@example.com", records)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 2, rep.Imported)
	assert.Len(t, rep.Skipped, 2)
	assert.Equal(t, []string{"Interní"}, rep.Unknown)

	records[1]["nazev"] = "Dopravník II"
	_, err = im.Run(ctx, "export.json", "admin@example.com", records)
	require.NoError(t, err)

	var projects []models.Project
	require.NoError(t, db.Order("id").Find(&projects).Error)
	require.Len(t, projects, 2)
	assert.Equal(t, "Z-001", projects[0].ID)
	assert.Equal(t, "Dopravník II", *projects[1].Title)

	var logs int64
	require.NoError(t, db.Model(&models.ImportLog{}).Count(&logs).Error)
	assert.EqualValues(t, 2, logs)
}

func TestRunDuplicateCodeKeepsLastRecord(t *testing.T) {
	db := testutil.NewDB(t)
	im := New(db, nil, testutil.Logger())

	rep, err := im.Run(context.Background(), "dup.json", "admin@example.com", []map[string]any{
		{"Kód": "A", "Název": "first"},
		{"Kód": "A", "Název": "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Imported)

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", "A").Error)
	assert.Equal(t, "second", *p.Title)
}

func TestRunKeepsColumnsSetInApp(t *testing.T) {
	db := testutil.NewDB(t)
	im := New(db, nil, testutil.Logger())
	ctx := context.Background()

	records, err := Parse(strings.NewReader(export))
	require.NoError(t, err)
	_, err = im.Run(ctx, "export.json", "admin@example.com", records)
	require.NoError(t, err)

	// менеджера назначили уже в приложении
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", "Z-001").
		Updates(map[string]any{"manager_id": "mgr-1", "created_by": "user-1"}).Error)

	records[0]["Název projektu"] = "Lis 500t"
	_, err = im.Run(ctx, "export.json", "admin@example.com", records)
	require.NoError(t, err)

	var p models.Project
	require.NoError(t, db.First(&p, "id = ?", "Z-001").Error)
	assert.Equal(t, "Lis 500t", *p.Title)
	require.NotNil(t, p.ManagerID)
	assert.Equal(t, "mgr-1", *p.ManagerID)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, "user-1", *p.CreatedBy)
}

func TestMapLabelsForSameColumn(t *testing.T) {
	im := New(nil, nil, testutil.Logger())

	rec := map[string]any{"Číslo zakázky": "Z-9", "Kód zakázky": "Z-1", "Název": "Rám"}
	for i := 0; i < 20; i++ {
		p, _, err := im.Map(rec)
		require.NoError(t, err)
		assert.Equal(t, "Z-1", p.ID)
	}

	// пустая метка с приоритетом не затирает заполненную
	p, _, err := im.Map(map[string]any{"Kód": "NaN", "Číslo projektu": "Z-7", "Název": "Rám"})
	require.NoError(t, err)
	assert.Equal(t, "Z-7", p.ID)
}
