package mart

import "strings"

// Layer identifies one of the four generated pipeline objects.
// Layers are totally ordered: each one reads from the previous.
type Layer int

// Pipeline layers in generation order.
const (
	// LayerTranslation is the VW_1 translation view (identifier resolution).
	LayerTranslation Layer = iota
	// LayerGranularity is the DT_2 granularity table (branch key extraction).
	LayerGranularity
	// LayerPreAggregation is the DT_3A pre-aggregation table (UNION ALL branches).
	LayerPreAggregation
	// LayerMart is the DT_3 data mart (base rows + formula cascade).
	LayerMart
)

// Layers returns all layers in generation order.
func Layers() []Layer {
	return []Layer{LayerTranslation, LayerGranularity, LayerPreAggregation, LayerMart}
}

// String returns the layer's short label.
func (l Layer) String() string {
	switch l {
	case LayerTranslation:
		return "translation"
	case LayerGranularity:
		return "granularity"
	case LayerPreAggregation:
		return "pre-aggregation"
	case LayerMart:
		return "mart"
	default:
		return "unknown"
	}
}

// ObjectPrefix returns the object-name prefix for the layer.
func (l Layer) ObjectPrefix() string {
	switch l {
	case LayerTranslation:
		return "VW_1"
	case LayerGranularity:
		return "DT_2"
	case LayerPreAggregation:
		return "DT_3A"
	case LayerMart:
		return "DT_3"
	default:
		return ""
	}
}

// ParseLayer converts a prefix or label to a Layer.
// Returns the layer and true if valid, or LayerTranslation and false if not.
func ParseLayer(s string) (Layer, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VW_1", "TRANSLATION":
		return LayerTranslation, true
	case "DT_2", "GRANULARITY":
		return LayerGranularity, true
	case "DT_3A", "PRE-AGGREGATION", "PREAGG":
		return LayerPreAggregation, true
	case "DT_3", "MART":
		return LayerMart, true
	default:
		return LayerTranslation, false
	}
}

// PipelineObject is one generated SQL artifact. Objects are created fresh on
// each render and immutable once produced.
type PipelineObject struct {
	// Layer places the object in the fixed VW_1 -> DT_2 -> DT_3A -> DT_3 order.
	Layer Layer
	// Name is the fully qualified object name without database/schema.
	Name string
	// DDL is the complete, standalone SQL statement for the object.
	DDL string
	// Dependencies lists the objects/tables this object reads from.
	Dependencies []string
}
