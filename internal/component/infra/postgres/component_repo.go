package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dwikikusuma/techstore/internal/component/app"
	"github.com/dwikikusuma/techstore/internal/component/domain"
)

// Table is the table backing kind, e.g. component_cpus.
func Table(kind domain.Kind) string { return "component_" + string(kind) + "s" }

// Store keeps one component kind in its own table. T is the domain struct; PT is its pointer,
// which carries the Component methods.
type Store[T any, PT interface {
	*T
	domain.Component
}] struct {
	db    *gorm.DB
	kind  domain.Kind
	table string
}

func NewStore[T any, PT interface {
	*T
	domain.Component
}](db *gorm.DB) *Store[T, PT] {
	kind := PT(new(T)).Kind()
	return &Store[T, PT]{db: db, kind: kind, table: Table(kind)}
}

func (s *Store[T, PT]) Kind() domain.Kind { return s.kind }

func (s *Store[T, PT]) AutoMigrate() error {
	return s.db.Table(s.table).AutoMigrate(new(T))
}

func (s *Store[T, PT]) List(ctx context.Context, includeInactive bool) ([]domain.Component, error) {
	q := s.db.WithContext(ctx).Table(s.table).Where("status <> ?", string(domain.StatusDeleted))
	if !includeInactive {
		q = q.Where("status = ?", string(domain.StatusActive))
	}
	var rows []T
	if err := q.Order("brand, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Component, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}

func (s *Store[T, PT]) Get(ctx context.Context, id string) (domain.Component, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, app.ErrNotFound
	}
	v := new(T)
	err := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Take(v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, app.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return PT(v), nil
}

func (s *Store[T, PT]) Create(ctx context.Context, c domain.Component) (domain.Component, error) {
	v, err := s.cast(c)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m := v.Base()
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt = now, now
	if err := s.db.WithContext(ctx).Table(s.table).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store[T, PT]) Update(ctx context.Context, c domain.Component) (domain.Component, error) {
	v, err := s.cast(c)
	if err != nil {
		return nil, err
	}
	m := v.Base()
	m.UpdatedAt = time.Now().UTC()
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", m.ID).
		Select("*").Omit("id", "created_at").Updates(v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, app.ErrNotFound
	}
	return s.Get(ctx, m.ID)
}

func (s *Store[T, PT]) SetStatus(ctx context.Context, id string, status domain.Status) error {
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return app.ErrNotFound
	}
	return nil
}

func (s *Store[T, PT]) cast(c domain.Component) (PT, error) {
	v, ok := c.(PT)
	if !ok {
		return nil, domain.ErrUnknownKind
	}
	return v, nil
}

// Stores builds one store per kind.
func Stores(db *gorm.DB) map[domain.Kind]app.ComponentRepo {
	return map[domain.Kind]app.ComponentRepo{
		domain.KindCPU:     NewStore[domain.CPU](db),
		domain.KindRAM:     NewStore[domain.RAM](db),
		domain.KindStorage: NewStore[domain.Storage](db),
		domain.KindGPU:     NewStore[domain.GPU](db),
		domain.KindDisplay: NewStore[domain.Display](db),
	}
}

func AutoMigrate(db *gorm.DB) error {
	migrators := []interface{ AutoMigrate() error }{
		NewStore[domain.CPU](db),
		NewStore[domain.RAM](db),
		NewStore[domain.Storage](db),
		NewStore[domain.GPU](db),
		NewStore[domain.Display](db),
	}
	for _, m := range migrators {
		if err := m.AutoMigrate(); err != nil {
			return err
		}
	}
	return nil
}
