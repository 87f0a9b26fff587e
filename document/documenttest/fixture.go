// Package documenttest builds small AcroForm PDFs for tests.
package documenttest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	api.DisableConfigDir()
}

// Widget describes one field widget on a page
type Widget struct {
	Name  string
	Value string
	Rect  [4]float64

	// Parent names a non-terminal field the widget is a kid of
	Parent string

	// Checkbox makes a button field whose Value is written as a state name
	Checkbox bool
}

type objectTable struct {
	objects []string
}

func (t *objectTable) reserve() int {
	t.objects = append(t.objects, "")
	return len(t.objects)
}

func (t *objectTable) set(num int, obj string) {
	t.objects[num-1] = obj
}

// FormPDF returns a PDF with one page per entry, each carrying the given widgets.
// The document is written by pdfcpu.
func FormPDF(pages ...[]Widget) []byte {
	if len(pages) == 0 {
		pages = [][]Widget{nil}
	}

	t := &objectTable{}
	catalogNum := t.reserve()
	pagesNum := t.reserve()

	var pageRefs, fieldRefs []string
	var parentOrder []string
	parentNums := map[string]int{}
	parentKids := map[string][]string{}

	for _, widgets := range pages {
		pageNum := t.reserve()
		pageRefs = append(pageRefs, ref(pageNum))

		var annotRefs []string
		for _, w := range widgets {
			num := t.reserve()
			annotRefs = append(annotRefs, ref(num))

			parentNum := 0
			if w.Parent != "" {
				if _, ok := parentNums[w.Parent]; !ok {
					parentNums[w.Parent] = t.reserve()
					parentOrder = append(parentOrder, w.Parent)
					fieldRefs = append(fieldRefs, ref(parentNums[w.Parent]))
				}
				parentNum = parentNums[w.Parent]
				parentKids[w.Parent] = append(parentKids[w.Parent], ref(num))
			} else {
				fieldRefs = append(fieldRefs, ref(num))
			}
			t.set(num, widgetObject(w, pageNum, parentNum))
		}

		page := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << >>", ref(pagesNum))
		if len(annotRefs) > 0 {
			page += fmt.Sprintf(" /Annots [%s]", strings.Join(annotRefs, " "))
		}
		t.set(pageNum, page+" >>")
	}

	for _, name := range parentOrder {
		t.set(parentNums[name], fmt.Sprintf("<< /T (%s) /Kids [%s] >>", escape(name), strings.Join(parentKids[name], " ")))
	}

	catalog := fmt.Sprintf("<< /Type /Catalog /Pages %s", ref(pagesNum))
	if len(fieldRefs) > 0 {
		catalog += fmt.Sprintf(" /AcroForm << /Fields [%s] >>", strings.Join(fieldRefs, " "))
	}
	t.set(catalogNum, catalog+" >>")
	t.set(pagesNum, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(pageRefs, " "), len(pages)))

	return rewrite(assemble(t.objects))
}

func ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

func widgetObject(w Widget, pageNum, parentNum int) string {
	var b strings.Builder
	b.WriteString("<< /Type /Annot /Subtype /Widget")
	if w.Checkbox {
		b.WriteString(" /FT /Btn")
	} else {
		b.WriteString(" /FT /Tx")
	}
	if w.Name != "" {
		fmt.Fprintf(&b, " /T (%s)", escape(w.Name))
	}
	switch {
	case w.Checkbox && w.Value != "":
		fmt.Fprintf(&b, " /V /%s /AS /%s", w.Value, w.Value)
	case w.Value != "":
		fmt.Fprintf(&b, " /V (%s)", escape(w.Value))
	}
	if parentNum > 0 {
		fmt.Fprintf(&b, " /Parent %s", ref(parentNum))
	}
	fmt.Fprintf(&b, " /Rect [%g %g %g %g] /F 4 /P %s >>", w.Rect[0], w.Rect[1], w.Rect[2], w.Rect[3], ref(pageNum))
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}

// assemble lays out the objects with a classic cross-reference table
func assemble(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// rewrite passes the document through pdfcpu's reader and writer
func rewrite(data []byte) []byte {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		panic(fmt.Sprintf("documenttest: read fixture: %v", err))
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		panic(fmt.Sprintf("documenttest: write fixture: %v", err))
	}
	return out.Bytes()
}
