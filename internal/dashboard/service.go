package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/deliverable/cityinsights/internal/cache"
)

var ErrUnknownDataset = errors.New("unknown dataset")

// Request carries the user's date inputs. A nil bound means "use the data's
// own min/max".
type Request struct {
	Start *civil.Date
	End   *civil.Date
}

// Chart is one tidy table plus the labels needed to draw it.
type Chart struct {
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	ValueLabel string            `json:"value_label"`
	DateLabel  string            `json:"date_label"`
	CityLabel  string            `json:"city_label"`
	Rows       []AggregatedCount `json:"rows"`
}

// View is everything the presentation layer needs for one interaction.
type View struct {
	Bounds   DateRange `json:"bounds"`
	Range    DateRange `json:"range"`
	Advisory Advisory  `json:"advisory"`
	Charts   []Chart   `json:"charts"`
}

// Input pairs a dataset definition with its raw observations.
type Input struct {
	Config       DatasetConfig
	Observations []Observation
}

// Compose runs aggregate, bounds, validate and filter over already-loaded
// data. It does no I/O.
func Compose(inputs []Input, req Request, window DateRange) View {
	aggregated := make([][]AggregatedCount, len(inputs))
	bounds := window
	for i, in := range inputs {
		aggregated[i] = Aggregate(in.Observations, in.Config.Aggregate)
		if in.Config.Bounds {
			if b, ok := Bounds(aggregated[i]); ok {
				bounds = b
			}
		}
	}

	selected := bounds
	if req.Start != nil {
		selected.Start = *req.Start
	}
	if req.End != nil {
		selected.End = *req.End
	}

	view := View{
		Bounds:   bounds,
		Range:    selected,
		Advisory: ValidateRange(selected, bounds, window),
		Charts:   make([]Chart, 0, len(inputs)),
	}
	for i, in := range inputs {
		view.Charts = append(view.Charts, Chart{
			Name:       in.Config.Name,
			Title:      in.Config.Title,
			ValueLabel: in.Config.ValueLabel,
			DateLabel:  in.Config.DateLabel,
			CityLabel:  in.Config.CityLabel,
			Rows:       FilterRange(aggregated[i], selected),
		})
	}
	return view
}

// Service loads each configured dataset through its registered loader and
// composes the view.
type Service struct {
	configs  *ConfigLoader
	datasets []DatasetConfig
	registry *Registry
	memo     *cache.Memo
	window   DateRange
	logger   *slog.Logger
}

// NewService fails if a dataset names a source nothing has registered.
func NewService(configs *ConfigLoader, registry *Registry, memo *cache.Memo, window DateRange, logger *slog.Logger) (*Service, error) {
	datasets := configs.Datasets()
	for _, ds := range datasets {
		if _, ok := registry.Get(ds.Source); !ok {
			return nil, fmt.Errorf("dataset '%s' uses unregistered source '%s'", ds.Name, ds.Source)
		}
	}
	return &Service{
		configs:  configs,
		datasets: datasets,
		registry: registry,
		memo:     memo,
		window:   window,
		logger:   logger.With("component", "dashboard_service"),
	}, nil
}

// Build returns the full dashboard view.
func (s *Service) Build(ctx context.Context, req Request) (*View, error) {
	inputs, err := s.load(ctx, s.datasets)
	if err != nil {
		return nil, err
	}
	view := Compose(inputs, req, s.window)
	s.logger.DebugContext(ctx, "Dashboard composed", "range", view.Range.String(), "advisory", view.Advisory.Level)
	return &view, nil
}

// Dataset returns a view holding only the named chart. The bounds dataset is
// still loaded so defaults and validation match the full dashboard.
func (s *Service) Dataset(ctx context.Context, name string, req Request) (*View, error) {
	target, ok := s.configs.GetConfig(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	wanted := []DatasetConfig{target}
	if !target.Bounds {
		for _, ds := range s.datasets {
			if ds.Bounds {
				wanted = append(wanted, ds)
			}
		}
	}

	inputs, err := s.load(ctx, wanted)
	if err != nil {
		return nil, err
	}
	view := Compose(inputs, req, s.window)
	charts := view.Charts[:0]
	for _, c := range view.Charts {
		if c.Name == name {
			charts = append(charts, c)
		}
	}
	view.Charts = charts
	return &view, nil
}

// Invalidate clears every memoized query result.
func (s *Service) Invalidate() int {
	return s.memo.Flush()
}

func (s *Service) CacheStats() cache.Stats {
	return s.memo.Stats()
}

func (s *Service) load(ctx context.Context, datasets []DatasetConfig) ([]Input, error) {
	inputs := make([]Input, 0, len(datasets))
	for _, ds := range datasets {
		loader, _ := s.registry.Get(ds.Source)
		obs, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset '%s': %w", ds.Name, err)
		}
		inputs = append(inputs, Input{Config: ds, Observations: obs})
	}
	return inputs, nil
}
