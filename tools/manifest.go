package tools

import (
	"strings"

	"github.com/tailored-agentic-units/ezra/core/protocol"
)

// RenderManifest renders descriptors as markdown for injection into a
// planning prompt. Output depends only on the input sequence.
//
//	## calculator
//
//	Simple calculator tool
//
//	### Arguments
//
//	- **a** `number` (required): First number
//
//	**Returns:** number
func RenderManifest(descriptors []protocol.Descriptor) string {
	var b strings.Builder

	for i, d := range descriptors {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString("## ")
		b.WriteString(d.Name)
		b.WriteString("\n\n")

		if d.Description != "" {
			b.WriteString(d.Description)
			b.WriteString("\n\n")
		}

		b.WriteString("### Arguments\n\n")
		if len(d.Parameters) == 0 {
			b.WriteString("None.\n")
		}
		for _, p := range d.Parameters {
			writeParameter(&b, p)
		}

		if d.Returns != "" {
			b.WriteString("\n**Returns:** ")
			b.WriteString(d.Returns)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeParameter(b *strings.Builder, p protocol.Parameter) {
	typ := p.Type
	if typ == "" {
		typ = protocol.TypeAny
	}

	requirement := "required"
	if !p.IsRequired() {
		requirement = "optional"
	}

	b.WriteString("- **")
	b.WriteString(p.Name)
	b.WriteString("** `")
	b.WriteString(string(typ))
	b.WriteString("` (")
	b.WriteString(requirement)
	b.WriteString(")")
	if p.Description != "" {
		b.WriteString(": ")
		b.WriteString(p.Description)
	}
	b.WriteString("\n")
}
