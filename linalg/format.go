package linalg

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

func variantName(rank int) string {
	switch rank {
	case 1:
		return "Vector"
	case 2:
		return "Matrix"
	default:
		return fmt.Sprintf("Tensor%d", rank)
	}
}

// GoString returns a compact structural description.
func (t *Tensor[T]) GoString() string {
	axes := make([]string, len(t.axes))
	for a, d := range t.axes {
		axes[a] = d.String()
	}
	return fmt.Sprintf("linalg.%s[%v]{label: %q, nirrep: %d, symmetry: %d, axes: [%s]}",
		variantName(len(t.axes)), KindOf[T](), t.label, t.nirrep, t.symmetry, strings.Join(axes, " "))
}

// String renders every stored block.
func (t *Tensor[T]) String() string {
	return t.Describe("")
}

// Describe renders every stored block, with extra appended to the title line.
func (t *Tensor[T]) Describe(extra string) string {
	var b strings.Builder

	title := variantName(len(t.axes))
	if t.label != "" {
		title += " " + t.label
	}
	if extra != "" {
		title += " " + extra
	}
	fmt.Fprintf(&b, "  ## %s (%v, nirrep=%d, symmetry=%d) ##\n", title, KindOf[T](), t.nirrep, t.symmetry)
	b.WriteString("  " + strings.Repeat("=", runewidth.StringWidth(title)+6) + "\n")

	for h, blk := range t.blocks {
		if blk.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  Irrep %d %v\n", h, blk.Shape)
		writeBlock(&b, blk)
	}
	return b.String()
}

func writeBlock[T Element](b *strings.Builder, blk *Block[T]) {
	cols := blk.Shape[len(blk.Shape)-1]
	if cols == 0 {
		return
	}
	rows := blk.Len() / cols
	for i := 0; i < rows; i++ {
		b.WriteString("   ")
		for j := 0; j < cols; j++ {
			b.WriteByte(' ')
			b.WriteString(runewidth.FillLeft(formatElement(blk.Data[i*cols+j]), 14))
		}
		b.WriteByte('\n')
	}
}

func formatElement[T Element](v T) string {
	switch x := any(v).(type) {
	case complex128:
		return fmt.Sprintf("%.5f%+.5fi", real(x), imag(x))
	case float32:
		return fmt.Sprintf("%.7f", x)
	default:
		return fmt.Sprintf("%.10f", real(toComplex(v)))
	}
}
