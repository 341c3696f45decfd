// Package records keeps the application log, the soil history, and the lawn
// settings in a store.KV under fixed logical keys.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/i474232898/lawn-tracker/internal/lawn"
	"github.com/i474232898/lawn-tracker/internal/store"
)

const (
	SoilKey     = "soil:measurements"
	SettingsKey = "settings"
)

// ApplicationsKey is the storage key of one application kind.
func ApplicationsKey(k lawn.Kind) string {
	return "applications:" + string(k)
}

var (
	// ErrNotFound is returned for an unknown record id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid record")
)

// Repository serializes reads and writes of the three record families. It
// is safe for concurrent use; writes are applied one at a time.
type Repository struct {
	kv       store.KV
	validate *validator.Validate

	mu sync.Mutex

	defaultCountry string
	newID          func() (uuid.UUID, error)
	now            func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithDefaultCountry sets the country reported for settings saved without
// one.
func WithDefaultCountry(code string) Option {
	return func(r *Repository) {
		r.defaultCountry = strings.ToUpper(strings.TrimSpace(code))
	}
}

// New creates a Repository over kv.
func New(kv store.KV, opts ...Option) *Repository {
	r := &Repository{
		kv:       kv,
		validate: validator.New(),
		newID:    uuid.NewV7,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Applications returns the log of one kind in insertion order.
func (r *Repository) Applications(ctx context.Context, kind lawn.Kind) ([]lawn.Application, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown application kind %q", ErrInvalid, kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadApplications(ctx, kind)
}

// AllApplications returns every kind's log, each in insertion order.
func (r *Repository) AllApplications(ctx context.Context) ([]lawn.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []lawn.Application
	for _, k := range lawn.Kinds() {
		apps, err := r.loadApplications(ctx, k)
		if err != nil {
			return nil, err
		}
		all = append(all, apps...)
	}
	return all, nil
}

// AddApplication validates a, assigns a new id, and appends it to its log.
func (r *Repository) AddApplication(ctx context.Context, a lawn.Application) (lawn.Application, error) {
	a = normalizeApplication(a)
	if err := r.validate.Struct(a); err != nil {
		return lawn.Application{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	id, err := r.newID()
	if err != nil {
		return lawn.Application{}, fmt.Errorf("generate id: %w", err)
	}
	a.ID = id.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	apps, err := r.loadApplications(ctx, a.Kind)
	if err != nil {
		return lawn.Application{}, err
	}
	apps = append(apps, a)
	if err := r.saveJSON(ctx, ApplicationsKey(a.Kind), apps); err != nil {
		return lawn.Application{}, err
	}
	return a, nil
}

// UpdateApplication replaces every field of the application with id except
// its id and kind. The record keeps its position in the log.
func (r *Repository) UpdateApplication(ctx context.Context, id string, a lawn.Application) (lawn.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind, apps, idx, err := r.findApplication(ctx, id)
	if err != nil {
		return lawn.Application{}, err
	}

	a.ID = id
	a.Kind = kind
	a = normalizeApplication(a)
	if err := r.validate.Struct(a); err != nil {
		return lawn.Application{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	apps[idx] = a
	if err := r.saveJSON(ctx, ApplicationsKey(kind), apps); err != nil {
		return lawn.Application{}, err
	}
	return a, nil
}

// DeleteApplication removes the application with id.
func (r *Repository) DeleteApplication(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind, apps, idx, err := r.findApplication(ctx, id)
	if err != nil {
		return err
	}
	apps = append(apps[:idx], apps[idx+1:]...)
	return r.saveJSON(ctx, ApplicationsKey(kind), apps)
}

func (r *Repository) findApplication(ctx context.Context, id string) (lawn.Kind, []lawn.Application, int, error) {
	for _, k := range lawn.Kinds() {
		apps, err := r.loadApplications(ctx, k)
		if err != nil {
			return "", nil, 0, err
		}
		for i, a := range apps {
			if a.ID == id {
				return k, apps, i, nil
			}
		}
	}
	return "", nil, 0, fmt.Errorf("%w: application %s", ErrNotFound, id)
}

func (r *Repository) loadApplications(ctx context.Context, kind lawn.Kind) ([]lawn.Application, error) {
	var apps []lawn.Application
	if err := r.loadJSON(ctx, ApplicationsKey(kind), &apps); err != nil {
		return nil, err
	}
	for i := range apps {
		// Older records may predate the kind field.
		apps[i].Kind = kind
	}
	return apps, nil
}

func normalizeApplication(a lawn.Application) lawn.Application {
	a.ProductType = strings.TrimSpace(a.ProductType)
	a.Notes = strings.TrimSpace(a.Notes)
	if a.Kind != lawn.KindFertilizer {
		a.NPK = ""
	}
	if !a.Date.IsZero() {
		a.Date = lawn.Day(a.Date)
	}
	return a
}

// SoilMeasurements returns the soil history ordered by date, oldest first.
func (r *Repository) SoilMeasurements(ctx context.Context) ([]lawn.SoilMeasurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []lawn.SoilMeasurement
	if err := r.loadJSON(ctx, SoilKey, &history); err != nil {
		return nil, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})
	return history, nil
}

// AddSoilMeasurement stores m with a new id. A zero date becomes the
// capture time. Measurements without values are rejected.
func (r *Repository) AddSoilMeasurement(ctx context.Context, m lawn.SoilMeasurement) (lawn.SoilMeasurement, error) {
	if len(m.Values) == 0 {
		return lawn.SoilMeasurement{}, fmt.Errorf("%w: soil measurement has no values", ErrInvalid)
	}
	for p := range m.Values {
		if !p.Valid() {
			return lawn.SoilMeasurement{}, fmt.Errorf("%w: unknown soil parameter %q", ErrInvalid, p)
		}
	}

	id, err := r.newID()
	if err != nil {
		return lawn.SoilMeasurement{}, fmt.Errorf("generate id: %w", err)
	}
	m.ID = id.String()
	if m.Date.IsZero() {
		m.Date = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var history []lawn.SoilMeasurement
	if err := r.loadJSON(ctx, SoilKey, &history); err != nil {
		return lawn.SoilMeasurement{}, err
	}
	history = append(history, m)
	if err := r.saveJSON(ctx, SoilKey, history); err != nil {
		return lawn.SoilMeasurement{}, err
	}
	return m, nil
}

// Settings returns the saved lawn profile, or the zero profile if none was saved.
func (r *Repository) Settings(ctx context.Context) (lawn.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s lawn.Settings
	if err := r.loadJSON(ctx, SettingsKey, &s); err != nil {
		return lawn.Settings{}, err
	}
	if s.CountryCode == "" && s.ZipCode != "" {
		s.CountryCode = r.defaultCountry
	}
	return s, nil
}

// SaveSettings validates and replaces the lawn profile.
func (r *Repository) SaveSettings(ctx context.Context, s lawn.Settings) (lawn.Settings, error) {
	s.ZipCode = strings.TrimSpace(s.ZipCode)
	s.CountryCode = strings.ToUpper(strings.TrimSpace(s.CountryCode))
	if err := r.validate.Struct(s); err != nil {
		return lawn.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveJSON(ctx, SettingsKey, s); err != nil {
		return lawn.Settings{}, err
	}
	return s, nil
}

// loadJSON decodes the value under key into out. A missing key leaves out untouched.
func (r *Repository) loadJSON(ctx context.Context, key string, out any) error {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Repository) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
