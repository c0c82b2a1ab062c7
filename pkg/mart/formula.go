package mart

// MinPrecedence and MaxPrecedence bound the calculation cascade.
// A formula may only reference groups at a strictly lower level.
const (
	MinPrecedence = 1
	MaxPrecedence = 5
)

// Formula is one calculation in the precedence cascade.
type Formula struct {
	// Group is the unique label of the calculation's output rows.
	Group string
	// Precedence is the evaluation tier, 1 through 5.
	Precedence int
	// Logic selects the operation applied to the operands.
	Logic Operation
	// ParamRef is the primary operand group (required).
	ParamRef string
	// Param2Ref is the optional secondary operand group.
	Param2Ref string
	// ExtraRefs are further operands carried on the secondary field.
	ExtraRefs []string
}

// Refs returns all non-empty operand references in declaration order.
func (f Formula) Refs() []string {
	refs := make([]string, 0, 2+len(f.ExtraRefs))
	if f.ParamRef != "" {
		refs = append(refs, f.ParamRef)
	}
	if f.Param2Ref != "" {
		refs = append(refs, f.Param2Ref)
	}
	for _, r := range f.ExtraRefs {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// SecondaryRefs returns the secondary operand and any extras, in order.
func (f Formula) SecondaryRefs() []string {
	refs := make([]string, 0, 1+len(f.ExtraRefs))
	if f.Param2Ref != "" {
		refs = append(refs, f.Param2Ref)
	}
	for _, r := range f.ExtraRefs {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}
