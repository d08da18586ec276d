package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/pkg/util"
)

// MemorySeriesStore keeps daily series in process. It backs development runs
// and tests.
type MemorySeriesStore struct {
	mu     sync.RWMutex
	series map[string]models.PriceSeries
}

func NewMemorySeriesStore() *MemorySeriesStore {
	return &MemorySeriesStore{series: make(map[string]models.PriceSeries)}
}

// Put replaces the series stored under s.Name.
func (m *MemorySeriesStore) Put(s models.PriceSeries) error {
	if s.Name == "" {
		return fmt.Errorf("put series: empty name")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	cp := s.Tail(s.Len())
	m.mu.Lock()
	m.series[s.Name] = cp
	m.mu.Unlock()
	return nil
}

// Append adds observations newer than the stored tail.
func (m *MemorySeriesStore) Append(commodity string, points ...models.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.series[commodity]
	s.Name = commodity
	for _, p := range points {
		if last, ok := s.Last(); ok && !p.Time.After(last.Time) {
			return fmt.Errorf("append %s: %s is not after %s", commodity,
				p.Time.Format(time.DateOnly), last.Time.Format(time.DateOnly))
		}
		s = s.Append(p)
	}
	m.series[commodity] = s
	return nil
}

func (m *MemorySeriesStore) get(commodity string) (models.PriceSeries, error) {
	m.mu.RLock()
	s, ok := m.series[commodity]
	m.mu.RUnlock()
	if !ok {
		return models.PriceSeries{}, fmt.Errorf("%w: %s", models.ErrUnknownCommodity, commodity)
	}
	return s, nil
}

func (m *MemorySeriesStore) GetSeries(_ context.Context, commodity string, from, to time.Time) (models.PriceSeries, error) {
	s, err := m.get(commodity)
	if err != nil {
		return models.PriceSeries{}, err
	}
	return s.Slice(from, to), nil
}

func (m *MemorySeriesStore) GetLatestN(_ context.Context, commodity string, n int) (models.PriceSeries, error) {
	s, err := m.get(commodity)
	if err != nil {
		return models.PriceSeries{}, err
	}
	return s.Tail(n), nil
}

func (m *MemorySeriesStore) Commodities(_ context.Context) ([]string, error) {
	m.mu.RLock()
	out := make([]string, 0, len(m.series))
	for name := range m.series {
		out = append(out, name)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Health always succeeds.
func (m *MemorySeriesStore) Health(context.Context) error { return nil }

type walkProfile struct {
	start, anchor, vol float64
}

var walkProfiles = map[string]walkProfile{
	"WTI":         {start: 75, anchor: 75, vol: 0.022},
	"Brent":       {start: 80, anchor: 80, vol: 0.02},
	"Natural Gas": {start: 3, anchor: 3, vol: 0.035},
	"Heating Oil": {start: 2.6, anchor: 2.6, vol: 0.025},
	"Gasoline":    {start: 2.4, anchor: 2.4, vol: 0.025},
}

// RandomWalkSeries builds a deterministic mean-reverting daily series ending on
// end. Unknown names start at 50.
func RandomWalkSeries(name string, days int, end time.Time, seed uint64) models.PriceSeries {
	prof, ok := walkProfiles[name]
	if !ok {
		prof = walkProfile{start: 50, anchor: 50, vol: 0.02}
	}
	r := rand.New(rand.NewPCG(seed, hashName(name)))
	end = util.TruncateDay(end)
	points := make([]models.PricePoint, days)
	price := prof.start
	for i := 0; i < days; i++ {
		pull := 0.02 * math.Log(prof.anchor/price)
		price *= math.Exp(pull + prof.vol*r.NormFloat64())
		points[i] = models.PricePoint{
			Time:  end.AddDate(0, 0, i-days+1),
			Price: math.Round(price*1000) / 1000,
		}
	}
	return models.PriceSeries{Name: name, Points: points}
}

// SeedRandomWalk fills the store with demo series for names.
func (m *MemorySeriesStore) SeedRandomWalk(names []string, days int, end time.Time, seed uint64) error {
	for _, name := range names {
		if err := m.Put(RandomWalkSeries(name, days, end, seed)); err != nil {
			return err
		}
	}
	return nil
}

func hashName(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
