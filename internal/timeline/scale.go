package timeline

import (
	"fmt"
	"time"
)

type Zoom string

const (
	ZoomDay   Zoom = "day"
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// пикселей на сутки для каждого масштаба
var pxPerDay = map[Zoom]float64{
	ZoomDay:   60,
	ZoomWeek:  20,
	ZoomMonth: 4,
}

// Scale: дата -> сдвиг в пикселях от Origin
type Scale struct {
	Zoom     Zoom      `json:"zoom"`
	Origin   time.Time `json:"origin"`
	PxPerDay float64   `json:"px_per_day"`
}

func ParseZoom(s string) (Zoom, error) {
	if s == "" {
		return ZoomWeek, nil
	}
	z := Zoom(s)
	if _, ok := pxPerDay[z]; !ok {
		return "", fmt.Errorf("unknown zoom %q", s)
	}
	return z, nil
}

func NewScale(zoom Zoom, origin time.Time) Scale {
	px, ok := pxPerDay[zoom]
	if !ok {
		zoom, px = ZoomWeek, pxPerDay[ZoomWeek]
	}
	return Scale{Zoom: zoom, Origin: origin, PxPerDay: px}
}

func (s Scale) X(t time.Time) float64 {
	return t.Sub(s.Origin).Hours() / 24 * s.PxPerDay
}

// Width: ширина полосы элемента, не меньше одного пикселя.
func (s Scale) Width(it Item) float64 {
	w := s.X(it.EndDate) - s.X(it.StartDate)
	if w < 1 {
		return 1
	}
	return w
}

type Bar struct {
	Item
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// Layout: раскладываем элементы, начало шкалы = самая ранняя дата старта
func Layout(items []Item, zoom Zoom) (Scale, []Bar) {
	var origin time.Time
	for i, it := range items {
		if i == 0 || it.StartDate.Before(origin) {
			origin = it.StartDate
		}
	}
	sc := NewScale(zoom, origin)

	bars := make([]Bar, 0, len(items))
	for _, it := range items {
		bars = append(bars, Bar{Item: it, X: sc.X(it.StartDate), Width: sc.Width(it)})
	}
	return sc, bars
}
