package layout

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// WGSL emits the struct declaration matching the layout. Every gap is spelled
// out as a u32 member so the GPU-side offsets never depend on implicit padding.
func (l *Layout) WGSL(structName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s: %d bytes, %s layout. Generated from %s.\n", structName, l.size, l.standard, l.typ)
	fmt.Fprintf(&sb, "struct %s {\n", structName)
	for _, m := range l.members {
		fmt.Fprintf(&sb, "\t%s: %s, // offset %d", m.Name, m.WGSLType(), m.Offset)
		if m.Wide {
			sb.WriteString(", xy only")
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Table renders a human-readable offset table.
func (l *Layout) Table() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OFFSET\tSIZE\tALIGN\tSTRIDE\tTYPE\tNAME")
	for _, m := range l.members {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s\n", m.Offset, m.Size, m.Align, m.Stride, m.WGSLType(), m.Name)
	}
	fmt.Fprintf(w, "%d\t\t%d\t\t\t(total)\n", l.size, l.align)
	w.Flush()
	return sb.String()
}
