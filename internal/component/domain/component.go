package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type Kind string

const (
	KindCPU     Kind = "cpu"
	KindRAM     Kind = "ram"
	KindStorage Kind = "storage"
	KindGPU     Kind = "gpu"
	KindDisplay Kind = "display"
)

var Kinds = []Kind{KindCPU, KindRAM, KindStorage, KindGPU, KindDisplay}

var ErrUnknownKind = fmt.Errorf("%w: unknown component kind", apperr.ErrInvalidInput)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Meta holds the columns every component table shares.
type Meta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Meta) Base() *Meta { return m }

func (m *Meta) validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Brand = strings.TrimSpace(m.Brand)
	if m.Name == "" {
		return errors.New("name is required")
	}
	if len(m.Name) > 160 || len(m.Brand) > 80 {
		return errors.New("name or brand too long")
	}
	switch m.Status {
	case "":
		m.Status = StatusActive
	case StatusActive, StatusInactive:
	default:
		return errors.New("status must be active or inactive")
	}
	return nil
}

type Component interface {
	Kind() Kind
	Base() *Meta
	// Validate normalises the receiver in place.
	Validate() error
	Summary() string
}

// New returns an empty component of kind, ready to be decoded into.
func New(kind Kind) (Component, error) {
	switch kind {
	case KindCPU:
		return &CPU{}, nil
	case KindRAM:
		return &RAM{}, nil
	case KindStorage:
		return &Storage{}, nil
	case KindGPU:
		return &GPU{}, nil
	case KindDisplay:
		return &Display{}, nil
	}
	return nil, ErrUnknownKind
}

// Brief is the compact form embedded in product detail.
type Brief struct {
	Kind    Kind   `json:"kind"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Brand   string `json:"brand"`
	Summary string `json:"summary"`
}

func BriefOf(c Component) Brief {
	m := c.Base()
	return Brief{Kind: c.Kind(), ID: m.ID, Name: m.Name, Brand: m.Brand, Summary: c.Summary()}
}

func invalid(kind Kind, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, kind, err)
}

type CPU struct {
	Meta
	Cores      int    `json:"cores"`
	Threads    int    `json:"threads"`
	BaseClock  int    `json:"base_clock_mhz"`
	BoostClock int    `json:"boost_clock_mhz"`
	Socket     string `json:"socket"`
}

func (*CPU) Kind() Kind { return KindCPU }

func (c *CPU) Validate() error {
	if err := c.Meta.validate(); err != nil {
		return invalid(KindCPU, err)
	}
	c.Socket = strings.TrimSpace(c.Socket)
	switch {
	case c.Cores <= 0:
		return invalid(KindCPU, errors.New("cores must be positive"))
	case c.Threads < c.Cores:
		return invalid(KindCPU, errors.New("threads must be at least cores"))
	case c.BaseClock <= 0:
		return invalid(KindCPU, errors.New("base clock must be positive"))
	case c.BoostClock != 0 && c.BoostClock < c.BaseClock:
		return invalid(KindCPU, errors.New("boost clock below base clock"))
	}
	return nil
}

func (c *CPU) Summary() string {
	clock := ghz(c.BaseClock)
	if c.BoostClock > 0 {
		clock += "-" + ghz(c.BoostClock)
	}
	return fmt.Sprintf("%s %s (%dC/%dT, %s GHz)", c.Brand, c.Name, c.Cores, c.Threads, clock)
}

type RAM struct {
	Meta
	CapacityGB int    `json:"capacity_gb"`
	Type       string `json:"type"`
	SpeedMHz   int    `json:"speed_mhz"`
}

func (*RAM) Kind() Kind { return KindRAM }

func (r *RAM) Validate() error {
	if err := r.Meta.validate(); err != nil {
		return invalid(KindRAM, err)
	}
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	if r.CapacityGB <= 0 {
		return invalid(KindRAM, errors.New("capacity must be positive"))
	}
	if r.Type == "" {
		return invalid(KindRAM, errors.New("type is required"))
	}
	if r.SpeedMHz < 0 {
		return invalid(KindRAM, errors.New("speed cannot be negative"))
	}
	return nil
}

func (r *RAM) Summary() string {
	if r.SpeedMHz > 0 {
		return fmt.Sprintf("%dGB %s-%d", r.CapacityGB, r.Type, r.SpeedMHz)
	}
	return fmt.Sprintf("%dGB %s", r.CapacityGB, r.Type)
}

type Storage struct {
	Meta
	CapacityGB int    `json:"capacity_gb"`
	Type       string `json:"type"`
	Interface  string `json:"interface"`
}

func (*Storage) Kind() Kind { return KindStorage }

func (s *Storage) Validate() error {
	if err := s.Meta.validate(); err != nil {
		return invalid(KindStorage, err)
	}
	s.Type = strings.ToUpper(strings.TrimSpace(s.Type))
	s.Interface = strings.TrimSpace(s.Interface)
	if s.CapacityGB <= 0 {
		return invalid(KindStorage, errors.New("capacity must be positive"))
	}
	if s.Type == "" {
		return invalid(KindStorage, errors.New("type is required"))
	}
	return nil
}

func (s *Storage) Summary() string {
	size := fmt.Sprintf("%dGB", s.CapacityGB)
	if s.CapacityGB >= 1000 && s.CapacityGB%1000 == 0 {
		size = fmt.Sprintf("%dTB", s.CapacityGB/1000)
	}
	out := size + " " + s.Type
	if s.Interface != "" {
		out += " " + s.Interface
	}
	return out
}

type GPU struct {
	Meta
	MemoryGB   int    `json:"memory_gb"`
	MemoryType string `json:"memory_type"`
	Integrated bool   `json:"integrated"`
}

func (*GPU) Kind() Kind { return KindGPU }

func (g *GPU) Validate() error {
	if err := g.Meta.validate(); err != nil {
		return invalid(KindGPU, err)
	}
	g.MemoryType = strings.ToUpper(strings.TrimSpace(g.MemoryType))
	if g.MemoryGB < 0 {
		return invalid(KindGPU, errors.New("memory cannot be negative"))
	}
	if !g.Integrated && g.MemoryGB == 0 {
		return invalid(KindGPU, errors.New("dedicated GPUs need memory"))
	}
	return nil
}

func (g *GPU) Summary() string {
	if g.Integrated {
		return fmt.Sprintf("%s %s (integrated)", g.Brand, g.Name)
	}
	return fmt.Sprintf("%s %s %dGB %s", g.Brand, g.Name, g.MemoryGB, g.MemoryType)
}

type Display struct {
	Meta
	SizeInch      float64 `json:"size_inch"`
	ResolutionW   int     `json:"resolution_w"`
	ResolutionH   int     `json:"resolution_h"`
	RefreshRateHz int     `json:"refresh_rate_hz"`
	Panel         string  `json:"panel"`
}

func (*Display) Kind() Kind { return KindDisplay }

func (d *Display) Validate() error {
	if err := d.Meta.validate(); err != nil {
		return invalid(KindDisplay, err)
	}
	d.Panel = strings.ToUpper(strings.TrimSpace(d.Panel))
	switch {
	case d.SizeInch <= 0:
		return invalid(KindDisplay, errors.New("size must be positive"))
	case d.ResolutionW <= 0 || d.ResolutionH <= 0:
		return invalid(KindDisplay, errors.New("resolution must be positive"))
	case d.RefreshRateHz < 0:
		return invalid(KindDisplay, errors.New("refresh rate cannot be negative"))
	}
	return nil
}

func (d *Display) Summary() string {
	out := fmt.Sprintf("%.1f\" %dx%d", d.SizeInch, d.ResolutionW, d.ResolutionH)
	if d.RefreshRateHz > 0 {
		out += fmt.Sprintf(" %dHz", d.RefreshRateHz)
	}
	if d.Panel != "" {
		out += " " + d.Panel
	}
	return out
}

func ghz(mhz int) string {
	return fmt.Sprintf("%.1f", float64(mhz)/1000)
}
