// Package importer: разовый перенос проектов из старой JSON-выгрузки.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pm-dashboard/internal/models"
	"pm-dashboard/internal/sanitize"
)

const batchSize = 100

// колонки, которые несёт выгрузка; остальные (manager_id, created_by)
// заполняются в приложении и при повторном импорте не трогаются
var importedColumns = []string{
	"title", "status", "client_name", "start_date", "end_date",
	"quantity", "description", "note", "updated_at",
}

// форматы дат, встречающиеся в выгрузке
var dateLayouts = []string{
	models.DateLayout,
	"2.1.2006",
	"02.01.2006",
	"2. 1. 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type Report struct {
	Total    int       `json:"total"`
	Imported int       `json:"imported"`
	Skipped  []Skipped `json:"skipped"`
	Unknown  []string  `json:"unknown_labels,omitempty"`
}

type Importer struct {
	db     *gorm.DB
	labels *Labels
	logger *zap.Logger
}

func New(db *gorm.DB, labels *Labels, logger *zap.Logger) *Importer {
	if labels == nil {
		labels = DefaultLabels
	}
	return &Importer{db: db, labels: labels, logger: logger}
}

// Parse: выгрузка = JSON-массив плоских объектов
func Parse(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return records, nil
}

// Map: запись выгрузки -> проект; неизвестные метки возвращаем для отчёта
func (im *Importer) Map(record map[string]any) (models.Project, []string, error) {
	var (
		p       models.Project
		unknown []string
	)

	// несколько меток на одну колонку: берём непустое значение метки,
	// объявленной в таблице раньше
	chosen := make(map[string]labelValue, len(record))
	for label, v := range record {
		col, rank, ok := im.labels.resolve(label)
		if !ok {
			unknown = append(unknown, label)
			continue
		}
		cand := labelValue{label: label, rank: rank, value: missing(v)}
		if cur, seen := chosen[col]; seen && !cand.beats(cur) {
			continue
		}
		chosen[col] = cand
	}
	sort.Strings(unknown)

	raw := make(map[string]any, len(chosen))
	for col, lv := range chosen {
		raw[col] = lv.value
	}
	fields := sanitize.Fields(raw)

	code := text(fields["id"])
	if code == nil {
		return p, unknown, fmt.Errorf("missing source code")
	}
	title := text(fields["title"])
	if title == nil {
		return p, unknown, fmt.Errorf("missing title")
	}
	p.ID = *code
	p.Title = title
	p.ClientName = text(fields["client_name"])
	p.Description = text(fields["description"])
	p.Note = text(fields["note"])

	p.Status = models.ProjectPlanning
	if s := text(fields["status"]); s != nil {
		st, ok := im.labels.Status(*s)
		if !ok {
			return p, unknown, fmt.Errorf("unknown status %q", *s)
		}
		p.Status = st
	}

	var err error
	if p.StartDate, err = date(fields["start_date"]); err != nil {
		return p, unknown, fmt.Errorf("start date: %w", err)
	}
	if p.EndDate, err = date(fields["end_date"]); err != nil {
		return p, unknown, fmt.Errorf("end date: %w", err)
	}
	if p.Quantity, err = quantity(fields["quantity"]); err != nil {
		return p, unknown, fmt.Errorf("quantity: %w", err)
	}
	return p, unknown, nil
}

type labelValue struct {
	label string
	rank  int
	value any
}

// beats: непустое значение важнее пустого, дальше порядок в таблице меток,
// при равенстве (две записи одной метки) решает сама метка.
func (a labelValue) beats(b labelValue) bool {
	if ab, bb := blank(a.value), blank(b.value); ab != bb {
		return bb
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.label < b.label
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Run: мапим все записи, валидные upsert по коду, пишем import_logs.
// Повторный прогон той же выгрузки даёт те же строки.
func (im *Importer) Run(ctx context.Context, fileName, performer string, records []map[string]any) (Report, error) {
	rep := Report{Total: len(records), Skipped: []Skipped{}}
	seenUnknown := map[string]bool{}

	byID := make(map[string]int)
	var projects []models.Project
	for i, rec := range records {
		p, unknown, err := im.Map(rec)
		for _, u := range unknown {
			if !seenUnknown[u] {
				seenUnknown[u] = true
				rep.Unknown = append(rep.Unknown, u)
			}
		}
		if err != nil {
			rep.Skipped = append(rep.Skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		// повтор кода в выгрузке: побеждает последняя запись
		if j, dup := byID[p.ID]; dup {
			projects[j] = p
			rep.Skipped = append(rep.Skipped, Skipped{Index: i, Reason: "duplicate code " + p.ID + ", later record kept"})
			continue
		}
		byID[p.ID] = len(projects)
		projects = append(projects, p)
	}

	if len(projects) > 0 {
		err := im.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(importedColumns),
			}).
			CreateInBatches(&projects, batchSize).Error
		if err != nil {
			return rep, fmt.Errorf("upsert projects: %w", err)
		}
	}
	rep.Imported = len(projects)
	sort.Strings(rep.Unknown)

	details, _ := json.Marshal(map[string]any{"skipped": rep.Skipped, "unknown_labels": rep.Unknown})
	entry := models.ImportLog{
		PerformedBy: performer,
		FileName:    fileName,
		Total:       rep.Total,
		Imported:    rep.Imported,
		Skipped:     len(rep.Skipped),
		Details:     details,
	}
	if err := im.db.WithContext(ctx).Create(&entry).Error; err != nil {
		im.logger.Warn("import log write failed", zap.String("file", fileName), zap.Error(err))
	}

	im.logger.Info("import finished",
		zap.String("file", fileName),
		zap.Int("total", rep.Total),
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", len(rep.Skipped)),
	)
	return rep, nil
}

// missing: заглушки "нет значения" из выгрузки -> nil
func missing(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.EqualFold(strings.TrimSpace(x), "nan") {
			return nil
		}
	}
	return v
}

func text(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(x)
		return &s
	case json.Number:
		s := x.String()
		return &s
	default:
		s := fmt.Sprint(x)
		return &s
	}
}

func date(v any) (*time.Time, error) {
	s := text(v)
	if s == nil {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", *s)
}

func quantity(v any) (*int, error) {
	s := text(v)
	if s == nil {
		return nil, nil
	}
	clean := strings.ReplaceAll(strings.ReplaceAll(*s, " ", ""), ",", ".")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a number: %q", *s)
	}
	n := int(math.Round(f))
	return &n, nil
}
