// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control on top of a tunable pool.

package adapters

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/control"
	"github.com/pkg/errors"
)

// TunablePool is the pool surface the control plane drives.
type TunablePool interface {
	api.Tunable
	TuneAll(settings map[api.Param]int) error
	Setting(param api.Param) (int64, error)
}

type ControlAdapter struct {
	pool    TunablePool
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter binds a control plane to p. Config keys naming a
// tuning parameter are applied through p.Tune.
func NewControlAdapter(p TunablePool) api.Control {
	adapter := &ControlAdapter{
		pool:    p,
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	adapter.config = control.NewConfigStore(adapter.apply)
	control.RegisterPlatformProbes(adapter.debug)
	if in, ok := p.(control.Inspectable); ok {
		control.RegisterPoolProbes(adapter.debug, in)
	}
	return adapter
}

// apply converts every recognised key, then hands the whole set to the
// pool, which rejects it as a unit.
func (c *ControlAdapter) apply(update map[string]any) error {
	var result *multierror.Error
	settings := make(map[api.Param]int)
	for key, raw := range update {
		param, ok := api.ParseParam(key)
		if !ok {
			continue
		}
		v, err := toInt(raw)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "config %q", key))
			continue
		}
		settings[param] = v
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	if len(settings) == 0 {
		return nil
	}
	return c.pool.TuneAll(settings)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, errors.Wrapf(api.ErrInvalidArgument, "%d overflows int", n)
		}
		return int(n), nil
	case uint:
		return fromUint(uint64(n))
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return fromUint(uint64(n))
	case uint64:
		return fromUint(n)
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, errors.Wrapf(api.ErrInvalidArgument, "%v is not an int", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Wrapf(api.ErrInvalidArgument, "%q is not an integer", n.String())
		}
		return toInt(i)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(api.ErrInvalidArgument, "%q is not an integer", n)
		}
		return toInt(i)
	}
	return 0, errors.Wrapf(api.ErrInvalidArgument, "unsupported type %T", v)
}

func fromUint(n uint64) (int, error) {
	if n > math.MaxInt {
		return 0, errors.Wrapf(api.ErrInvalidArgument, "%d overflows int", n)
	}
	return int(n), nil
}

// GetConfig returns the stored config merged with the live settings.
func (c *ControlAdapter) GetConfig() map[string]any {
	out := c.config.GetSnapshot()
	for _, param := range api.Params() {
		if v, err := c.pool.Setting(param); err == nil {
			out[param.String()] = v
		}
	}
	return out
}

func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	return c.config.SetConfig(cfg)
}

func (c *ControlAdapter) Stats() map[string]any {
	c.metrics.Sample(c.pool)
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any, len(stats)+len(debugStats))
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
	control.RegisterReloadHook(fn)
}

// SetMetric records a custom value reported by Stats.
func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
