// Package pipeline renders a mart configuration into the fixed four-object
// chain: the VW_1 translation view, the DT_2 granularity table, the DT_3A
// pre-aggregation table and the DT_3 data mart. Rendering is deterministic:
// the same configuration and formula set produce byte-identical DDL apart
// from the generation timestamp comment.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/formula"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Defaults for the dynamic-table DDL knobs.
const (
	DefaultWarehouse = "COMPUTE_WH"
	DefaultTargetLag = "1 hour"
)

// Config holds the assembler's render-time knobs. All fields are optional.
type Config struct {
	// Warehouse names the refresh warehouse written into dynamic tables.
	Warehouse string

	// TargetLag is the refresh lag for the terminal mart table. The
	// intermediate tables always use DOWNSTREAM lag.
	TargetLag string

	// Clock supplies the generation timestamp. Defaults to time.Now;
	// tests inject a fixed clock to make output byte-exact.
	Clock func() time.Time

	// Logger receives per-object debug lines. Defaults to a discard logger.
	Logger *slog.Logger
}

// Assembler renders pipeline objects from mart configurations. The zero
// cost of construction makes it safe to build one per render call, but a
// single Assembler is reusable across calls.
type Assembler struct {
	warehouse string
	targetLag string
	clock     func() time.Time
	logger    *slog.Logger
}

// New creates an Assembler. A nil config selects all defaults.
func New(config *Config) *Assembler {
	if config == nil {
		config = &Config{}
	}
	a := &Assembler{
		warehouse: config.Warehouse,
		targetLag: config.TargetLag,
		clock:     config.Clock,
		logger:    config.Logger,
	}
	if a.warehouse == "" {
		a.warehouse = DefaultWarehouse
	}
	if a.targetLag == "" {
		a.targetLag = DefaultTargetLag
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// RenderResult is the outcome of one render call.
type RenderResult struct {
	// Objects holds the four pipeline objects in layer order.
	Objects []mart.PipelineObject

	// Cascade is the standalone formula cascade statement, empty when the
	// render ran without formulas.
	Cascade string

	// Mappings counts the CASE arms rendered into the translation view.
	Mappings int

	// Aliased counts the arms that came from alias (typo-corrected) entries.
	Aliased int

	// Validation carries the configuration and formula diagnostics. It is
	// populated even when Render returns an error.
	Validation mart.ValidationResult
}

// Render produces the four pipeline objects for a configuration and an
// optional ordered formula set. Configuration errors and formula dependency
// errors block rendering; warnings ride along in the result. The objects
// come back in layer order, each naming its upstream in Dependencies.
func (a *Assembler) Render(cfg mart.MartConfig, formulas []mart.Formula) (RenderResult, error) {
	res := RenderResult{Validation: cfg.Validate()}
	res.Validation.Merge(formula.ValidateDependencies(formulas))
	if !res.Validation.Valid() {
		return res, fmt.Errorf("mart %q failed validation: %s", cfg.Name, res.Validation.Summary())
	}

	res.Mappings = len(cfg.DynamicColumnMap)
	for _, m := range cfg.DynamicColumnMap {
		if m.IsAlias {
			res.Aliased++
		}
	}

	preaggName := ObjectName(mart.LayerPreAggregation, cfg.Name)
	if len(formulas) > 0 {
		cascade, err := formula.GenerateCascade(formulas, Qualify(cfg, preaggName))
		if err != nil {
			return res, fmt.Errorf("mart %q: %w", cfg.Name, err)
		}
		res.Cascade = cascade
	}

	res.Objects = []mart.PipelineObject{
		a.renderTranslation(cfg),
		a.renderGranularity(cfg),
		a.renderPreAggregation(cfg),
		a.renderMart(cfg, formulas, res.Cascade),
	}
	for _, obj := range res.Objects {
		a.logger.Debug("rendered pipeline object",
			"mart", cfg.Name,
			"object", obj.Name,
			"layer", obj.Layer.String(),
			"bytes", len(obj.DDL))
	}
	return res, nil
}

// header renders the comment block at the top of every generated statement.
// Only the timestamp varies between identical renders.
func (a *Assembler) header(cfg mart.MartConfig) string {
	ts := a.clock().UTC().Format(time.RFC3339)
	if cfg.ReportType != "" {
		return fmt.Sprintf("-- Generated by wright at %s\n-- Mart: %s (%s)\n", ts, cfg.Name, cfg.ReportType)
	}
	return fmt.Sprintf("-- Generated by wright at %s\n-- Mart: %s\n", ts, cfg.Name)
}
