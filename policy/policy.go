// Package policy holds the recognized-primitive configuration driving behavior
// inference: which primitive calls transfer control abnormally, which allocate
// or register resources, which act as exception-absorbing guards, and which
// fields of which types count as hidden for mutably-constant analysis.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the user-facing configuration shape.
type Policy struct {
	// AbnormalTransferPrimitives are primitive-call names treated as
	// abnormal control transfer out of the calling function.
	AbnormalTransferPrimitives []string `yaml:"abnormalTransferPrimitives"`

	// ResourceAllocationPrimitives are primitive-call names that produce
	// a registerable resource.
	ResourceAllocationPrimitives []string `yaml:"resourceAllocationPrimitives"`

	// ResourceRegistrationPrimitives record an allocated resource with the
	// external registry.
	ResourceRegistrationPrimitives []string `yaml:"resourceRegistrationPrimitives"`

	// GuardPrimitives are source-level exception-absorbing boundaries the
	// Go front end recognizes; calls inside them get the guarded marker.
	GuardPrimitives []string `yaml:"guardPrimitives"`

	// BenignPrimitives are known to return normally with no effects the
	// analysis cares about. Primitives in no set at all are opaque and
	// degrade facts to unverifiable.
	BenignPrimitives []string `yaml:"benignPrimitives"`

	// HiddenFieldAnnotations maps a type name to the set of its fields
	// considered non-observable for mutably-constant analysis.
	HiddenFieldAnnotations map[string][]string `yaml:"hiddenFieldAnnotations"`
}

// Some primitives are known for stopping current function execution or even
// stopping the whole program, others for plain allocation or cleanup. The
// predefined tables below cover the usual suspects; user configuration is
// merged on top and wins on conflicts.
func Default() *Policy {
	return &Policy{
		AbnormalTransferPrimitives: []string{
			"abort", "exit", "_Exit", "quick_exit",
			"longjmp", "siglongjmp",
			"panic", "raise", "throw",
		},
		ResourceAllocationPrimitives: []string{
			"malloc", "calloc", "realloc", "strdup",
		},
		BenignPrimitives: []string{
			"free", "memcpy", "memset", "memmove",
			"printf", "fprintf", "snprintf",
			"strlen", "strcmp", "strncmp",
		},
	}
}

// Load reads a YAML policy file and merges it over the built-in defaults.
// Unknown keys are rejected.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	return Parse(raw)
}

// Parse decodes YAML policy content and merges it over the built-in defaults.
func Parse(raw []byte) (*Policy, error) {
	var custom Policy

	if err := unmarshalStrict(raw, &custom); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	base := Default()
	base.AbnormalTransferPrimitives = append(base.AbnormalTransferPrimitives, custom.AbnormalTransferPrimitives...)
	base.ResourceAllocationPrimitives = append(base.ResourceAllocationPrimitives, custom.ResourceAllocationPrimitives...)
	base.ResourceRegistrationPrimitives = append(base.ResourceRegistrationPrimitives, custom.ResourceRegistrationPrimitives...)
	base.GuardPrimitives = append(base.GuardPrimitives, custom.GuardPrimitives...)
	base.BenignPrimitives = append(base.BenignPrimitives, custom.BenignPrimitives...)

	if len(custom.HiddenFieldAnnotations) > 0 {
		if base.HiddenFieldAnnotations == nil {
			base.HiddenFieldAnnotations = make(map[string][]string, len(custom.HiddenFieldAnnotations))
		}
		for typ, fields := range custom.HiddenFieldAnnotations {
			base.HiddenFieldAnnotations[typ] = append(base.HiddenFieldAnnotations[typ], fields...)
		}
	}

	return base, nil
}

func unmarshalStrict(raw []byte, dst *Policy) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		// io.EOF means an empty document, defaults only.
		return err
	}

	return nil
}
