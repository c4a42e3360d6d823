package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const saveTimeout = 10 * time.Second

type SaveFunc func(ctx context.Context, userID, tableID string, p Prefs) error

type key struct {
	userID  string
	tableID string
}

type pending struct {
	prefs Prefs
	timer *time.Timer
	gen   uint64
}

// Debouncer: частые изменения по (user, table) сливаются в одну запись
// после паузы. Каждый Update перезапускает таймер.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	save    SaveFunc
	logger  *zap.Logger
	pending map[key]*pending
	wg      sync.WaitGroup
	closed  bool
}

func NewDebouncer(quiet time.Duration, save SaveFunc, logger *zap.Logger) *Debouncer {
	return &Debouncer{
		quiet:   quiet,
		save:    save,
		logger:  logger,
		pending: make(map[key]*pending),
	}
}

func (d *Debouncer) Update(userID, tableID string, p Prefs) {
	k := key{userID: userID, tableID: tableID}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.write(k, p)
		return
	}
	e, ok := d.pending[k]
	if !ok {
		e = &pending{}
		d.pending[k] = e
	} else {
		e.timer.Stop()
	}
	e.prefs = p
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(d.quiet, func() { d.fire(k, gen) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(k key, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[k]
	// таймер уже заменён более новым Update
	if !ok || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, k)
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	d.write(k, e.prefs)
}

func (d *Debouncer) write(k key, p Prefs) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := d.save(ctx, k.userID, k.tableID, p); err != nil {
		d.logger.Warn("table settings save failed",
			zap.String("user_id", k.userID),
			zap.String("table_id", k.tableID),
			zap.Error(err),
		)
	}
}

// Flush: пишем всё отложенное сразу и ждём текущие записи.
// После Flush обновления сохраняются синхронно.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.closed = true
	batch := make(map[key]Prefs, len(d.pending))
	for k, e := range d.pending {
		e.timer.Stop()
		batch[k] = e.prefs
	}
	d.pending = make(map[key]*pending)
	d.mu.Unlock()

	for k, p := range batch {
		d.write(k, p)
	}
	d.wg.Wait()
}

// Pending: сколько записей ждут паузы
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
