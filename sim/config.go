package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
)

// ShortfallPolicy selects how a pick line behaves when on-hand stock cannot
// cover the requested quantity. Stock never goes negative under either policy.
type ShortfallPolicy string

const (
	// ShortfallFailLine records the line as unfulfilled and lets the order
	// continue with its remaining lines.
	ShortfallFailLine ShortfallPolicy = "fail-line"

	// ShortfallBackorder parks the line until replenishment restores stock,
	// releasing held resources while it waits. Requires ReplenishLeadTime > 0.
	ShortfallBackorder ShortfallPolicy = "backorder"
)

// Config holds every knob for a simulation run. It is a plain value: copy it
// by assignment, never share a pointer between runs. All times are simulated
// minutes, arrival rate is orders per hour.
type Config struct {
	SimulationTime float64 `mapstructure:"simulation_time" validate:"gt=0"`
	TimeUnit       string  `mapstructure:"time_unit"`
	RandomSeed     int64   `mapstructure:"random_seed"`

	NumStorageLocations int `mapstructure:"num_storage_locations" validate:"gte=1"`
	NumWorkers          int `mapstructure:"num_workers" validate:"gte=1"`
	NumForklifts        int `mapstructure:"num_forklifts" validate:"gte=1"`

	PickTimeMean      float64 `mapstructure:"pick_time_mean" validate:"gt=0"`
	PickTimeStd       float64 `mapstructure:"pick_time_std" validate:"gte=0"`
	PackTimeMean      float64 `mapstructure:"pack_time_mean" validate:"gt=0"`
	PackTimeStd       float64 `mapstructure:"pack_time_std" validate:"gte=0"`
	TransportTimeMean float64 `mapstructure:"transport_time_mean" validate:"gt=0"`
	TransportTimeStd  float64 `mapstructure:"transport_time_std" validate:"gte=0"`
	ShipTimeMean      float64 `mapstructure:"ship_time_mean" validate:"gt=0"`
	ShipTimeStd       float64 `mapstructure:"ship_time_std" validate:"gte=0"`

	OrderArrivalRate  float64 `mapstructure:"order_arrival_rate" validate:"gt=0"`
	ItemsPerOrderMean float64 `mapstructure:"items_per_order_mean" validate:"gt=0"`
	ItemsPerOrderStd  float64 `mapstructure:"items_per_order_std" validate:"gte=0"`

	// Orders whose total unit count exceeds HandCarryLimit need a forklift
	// during picking.
	HandCarryLimit int `mapstructure:"hand_carry_limit" validate:"gte=0"`

	// ReplenishLeadTime is the delay between a stock level falling below an
	// item's MinStock and the restock arriving. Zero disables replenishment.
	ReplenishLeadTime float64         `mapstructure:"replenish_lead_time" validate:"gte=0"`
	Shortfall         ShortfallPolicy `mapstructure:"shortfall_policy" validate:"oneof=fail-line backorder"`

	ERPSyncInterval   float64 `mapstructure:"erp_sync_interval" validate:"gte=0"`
	SyncThreshold     float64 `mapstructure:"sync_threshold" validate:"gte=0,lte=1"`
	CalibrationWindow int     `mapstructure:"calibration_window" validate:"gte=1"`
	EventBufferSize   int     `mapstructure:"event_buffer_size" validate:"gte=1"`

	// DetailedTracing records per-acquisition resource events in addition to
	// order and inventory events. Utilization metrics do not depend on it.
	DetailedTracing bool `mapstructure:"detailed_tracing"`
}

// DefaultConfig returns the standard 8-hour-shift configuration.
func DefaultConfig() Config {
	return Config{
		SimulationTime:      480.0,
		TimeUnit:            "minutes",
		RandomSeed:          42,
		NumStorageLocations: 100,
		NumWorkers:          5,
		NumForklifts:        2,
		PickTimeMean:        2.0,
		PickTimeStd:         0.5,
		PackTimeMean:        3.0,
		PackTimeStd:         0.8,
		TransportTimeMean:   1.5,
		TransportTimeStd:    0.3,
		ShipTimeMean:        1.0,
		ShipTimeStd:         0.2,
		OrderArrivalRate:    5.0,
		ItemsPerOrderMean:   3.0,
		ItemsPerOrderStd:    1.5,
		HandCarryLimit:      5,
		ReplenishLeadTime:   0.0,
		Shortfall:           ShortfallFailLine,
		ERPSyncInterval:     60.0,
		SyncThreshold:       0.05,
		CalibrationWindow:   100,
		EventBufferSize:     1000,
		DetailedTracing:     false,
	}
}

var configValidator = validator.New()

// Validate fails fast on any invalid field. Nothing is clamped: a Config that
// does not validate never reaches the event loop.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("config: field %s failed %q validation (value %v)", f.Field(), f.Tag(), f.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.Shortfall == ShortfallBackorder && c.ReplenishLeadTime <= 0 {
		return fmt.Errorf("config: shortfall policy %q requires replenish_lead_time > 0", ShortfallBackorder)
	}
	return nil
}

// ErrUnknownParameter reports an override or calibration parameter name that
// is not part of the tunable schema.
var ErrUnknownParameter = errors.New("unknown configuration parameter")

// parameterSetters is the closed schema of numeric parameters that scenario
// overrides and calibration results may set. Names match the mapstructure
// tags above. Anything outside this map fails with ErrUnknownParameter
// instead of being silently ignored.
var parameterSetters = map[string]func(*Config, float64){
	"simulation_time":       func(c *Config, v float64) { c.SimulationTime = v },
	"random_seed":           func(c *Config, v float64) { c.RandomSeed = int64(v) },
	"num_storage_locations": func(c *Config, v float64) { c.NumStorageLocations = roundInt(v) },
	"num_workers":           func(c *Config, v float64) { c.NumWorkers = roundInt(v) },
	"num_forklifts":         func(c *Config, v float64) { c.NumForklifts = roundInt(v) },
	"pick_time_mean":        func(c *Config, v float64) { c.PickTimeMean = v },
	"pick_time_std":         func(c *Config, v float64) { c.PickTimeStd = v },
	"pack_time_mean":        func(c *Config, v float64) { c.PackTimeMean = v },
	"pack_time_std":         func(c *Config, v float64) { c.PackTimeStd = v },
	"transport_time_mean":   func(c *Config, v float64) { c.TransportTimeMean = v },
	"transport_time_std":    func(c *Config, v float64) { c.TransportTimeStd = v },
	"ship_time_mean":        func(c *Config, v float64) { c.ShipTimeMean = v },
	"ship_time_std":         func(c *Config, v float64) { c.ShipTimeStd = v },
	"order_arrival_rate":    func(c *Config, v float64) { c.OrderArrivalRate = v },
	"items_per_order_mean":  func(c *Config, v float64) { c.ItemsPerOrderMean = v },
	"items_per_order_std":   func(c *Config, v float64) { c.ItemsPerOrderStd = v },
	"hand_carry_limit":      func(c *Config, v float64) { c.HandCarryLimit = roundInt(v) },
	"replenish_lead_time":   func(c *Config, v float64) { c.ReplenishLeadTime = v },
	"erp_sync_interval":     func(c *Config, v float64) { c.ERPSyncInterval = v },
	"sync_threshold":        func(c *Config, v float64) { c.SyncThreshold = v },
	"calibration_window":    func(c *Config, v float64) { c.CalibrationWindow = roundInt(v) },
	"event_buffer_size":     func(c *Config, v float64) { c.EventBufferSize = roundInt(v) },
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// TunableParameters lists the schema names accepted by ApplyParams, sorted.
func TunableParameters() []string {
	names := make([]string, 0, len(parameterSetters))
	for name := range parameterSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyParams returns a copy of cfg with the named values applied and
// validated. cfg itself is never mutated, so the caller's baseline stays
// intact even when an override is rejected.
func ApplyParams(cfg Config, params map[string]float64) (Config, error) {
	out := cfg
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		setter, ok := parameterSetters[name]
		if !ok {
			return cfg, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		setter(&out, params[name])
	}
	if err := out.Validate(); err != nil {
		return cfg, err
	}
	return out, nil
}
