package dashboard

import "fmt"

// DatasetConfig describes one chart: which registered source feeds it, how
// its rows are aggregated and how it is labelled.
type DatasetConfig struct {
	Name       string  `yaml:"name"`
	Source     string  `yaml:"source"`
	Title      string  `yaml:"title"`
	ValueLabel string  `yaml:"value_label"`
	DateLabel  string  `yaml:"date_label,omitempty"`
	CityLabel  string  `yaml:"city_label,omitempty"`
	Aggregate  AggFunc `yaml:"aggregate"`
	Order      int     `yaml:"order"`
	// Bounds marks the dataset whose min/max dates seed the date inputs and
	// range validation.
	Bounds bool `yaml:"bounds,omitempty"`
}

func (c *DatasetConfig) applyDefaults() {
	if c.DateLabel == "" {
		c.DateLabel = "Date"
	}
	if c.CityLabel == "" {
		c.CityLabel = "City"
	}
}

// Validate checks if the DatasetConfig is valid
func (c *DatasetConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config validation failed: name is required")
	}
	if c.Source == "" {
		return fmt.Errorf("config validation failed: source is required")
	}
	if c.Title == "" {
		return fmt.Errorf("config validation failed: title is required")
	}
	if c.ValueLabel == "" {
		return fmt.Errorf("config validation failed: value_label is required")
	}
	if !c.Aggregate.Valid() {
		return fmt.Errorf("config validation failed: aggregate '%s' must be one of count, sum", c.Aggregate)
	}
	return nil
}
