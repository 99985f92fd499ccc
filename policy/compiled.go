package policy

// Compiled is the lookup-friendly form of a policy the analysis phases use.
type Compiled struct {
	abnormal map[string]struct{}
	alloc    map[string]struct{}
	register map[string]struct{}
	guards   map[string]struct{}
	benign   map[string]struct{}
	hidden   map[string]map[string]struct{}
}

// Compile turns the configuration into set lookups.
func (p *Policy) Compile() *Compiled {
	c := &Compiled{
		abnormal: toSet(p.AbnormalTransferPrimitives),
		alloc:    toSet(p.ResourceAllocationPrimitives),
		register: toSet(p.ResourceRegistrationPrimitives),
		guards:   toSet(p.GuardPrimitives),
		benign:   toSet(p.BenignPrimitives),
		hidden:   make(map[string]map[string]struct{}, len(p.HiddenFieldAnnotations)),
	}

	for typ, fields := range p.HiddenFieldAnnotations {
		c.hidden[typ] = toSet(fields)
	}

	return c
}

func toSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}

	return s
}

// IsAbnormal reports whether the primitive transfers control abnormally.
func (c *Compiled) IsAbnormal(name string) bool {
	_, ok := c.abnormal[name]
	return ok
}

// IsAlloc reports whether the primitive allocates a registerable resource.
func (c *Compiled) IsAlloc(name string) bool {
	_, ok := c.alloc[name]
	return ok
}

// IsRegister reports whether the primitive records a resource with the registry.
func (c *Compiled) IsRegister(name string) bool {
	_, ok := c.register[name]
	return ok
}

// IsGuard reports whether the primitive is an exception-absorbing boundary.
func (c *Compiled) IsGuard(name string) bool {
	_, ok := c.guards[name]
	return ok
}

// IsKnown reports whether the primitive belongs to any recognized set.
// Unknown primitives are opaque: their behavior degrades facts to unverifiable.
func (c *Compiled) IsKnown(name string) bool {
	if _, ok := c.benign[name]; ok {
		return true
	}

	return c.IsAbnormal(name) || c.IsAlloc(name) || c.IsRegister(name) || c.IsGuard(name)
}

// IsHiddenField reports whether the field of the type is annotated as
// non-observable for mutably-constant analysis.
func (c *Compiled) IsHiddenField(typ, field string) bool {
	fields, ok := c.hidden[typ]
	if !ok {
		return false
	}

	_, ok = fields[field]
	return ok
}
