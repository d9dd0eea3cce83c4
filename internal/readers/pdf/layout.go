package pdf

import (
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf16"

	lpdf "github.com/ledongthuc/pdf"
)

// textRun is a string shown at a single position on the page.
type textRun struct {
	x, y float64 // origin in page space
	w    float64 // advance in page space, 0 when the font has no metrics
	size float64 // rendered font size
	s    string
}

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// mul returns m followed by n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// pageFont decodes the strings shown with one font resource.
type pageFont struct {
	font    lpdf.Font
	enc     lpdf.TextEncoding
	twoByte bool
	unicode bool // two-byte codes are UTF-16 units
	metrics bool
	dw      float64
	widths  map[int]float64
}

func loadFont(f lpdf.Font) *pageFont {
	pf := &pageFont{font: f}
	if f.V.Key("Subtype").Name() == "Type0" {
		switch f.V.Key("Encoding").Name() {
		case "Identity-H", "Identity-V":
			pf.twoByte = true
			pf.unicode = identityToUnicode(f.V.Key("ToUnicode"))
		}
		desc := f.V.Key("DescendantFonts").Index(0)
		pf.dw = 1000
		if dw := desc.Key("DW"); dw.Kind() == lpdf.Integer || dw.Kind() == lpdf.Real {
			pf.dw = dw.Float64()
		}
		pf.widths = cidWidths(desc.Key("W"))
		pf.metrics = true
	} else {
		pf.metrics = f.V.Key("Widths").Len() > 0
	}
	if !pf.unicode {
		pf.enc = f.Encoder()
	}
	return pf
}

// identityToUnicode reports whether a ToUnicode CMap maps every two-byte
// code onto the same UTF-16 value, as UTF-8 font writers emit it.
func identityToUnicode(v lpdf.Value) bool {
	if v.Kind() != lpdf.Stream {
		return false
	}
	rd := v.Reader()
	defer rd.Close()
	data, err := io.ReadAll(io.LimitReader(rd, 1<<16))
	if err != nil {
		return false
	}
	norm := strings.ToUpper(strings.Join(strings.Fields(string(data)), " "))
	return strings.Contains(norm, "1 BEGINBFRANGE <0000> <FFFF> <0000> ENDBFRANGE")
}

// cidWidths reads a CIDFont W array in both of its forms:
// "c [w1 w2 ...]" and "cfirst clast w".
func cidWidths(w lpdf.Value) map[int]float64 {
	out := make(map[int]float64)
	for i := 0; i < w.Len(); {
		first := int(w.Index(i).Int64())
		next := w.Index(i + 1)
		if next.Kind() == lpdf.Array {
			for j := 0; j < next.Len(); j++ {
				out[first+j] = next.Index(j).Float64()
			}
			i += 2
			continue
		}
		last := int(next.Int64())
		width := w.Index(i + 2).Float64()
		for c := first; c <= last && c-first < 1<<16; c++ {
			out[c] = width
		}
		i += 3
	}
	return out
}

func (f *pageFont) codes(raw string) []int {
	if !f.twoByte {
		out := make([]int, len(raw))
		for i := 0; i < len(raw); i++ {
			out[i] = int(raw[i])
		}
		return out
	}
	out := make([]int, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		out = append(out, int(raw[i])<<8|int(raw[i+1]))
	}
	return out
}

func (f *pageFont) decode(raw string) string {
	if !f.unicode {
		return f.enc.Decode(raw)
	}
	codes := f.codes(raw)
	units := make([]uint16, len(codes))
	for i, c := range codes {
		units[i] = uint16(c)
	}
	return string(utf16.Decode(units))
}

func (f *pageFont) width(code int) float64 {
	if !f.twoByte {
		return f.font.Width(code)
	}
	if w, ok := f.widths[code]; ok {
		return w
	}
	return f.dw
}

// textState is the part of the graphics state that positions text.
type textState struct {
	ctm       matrix
	font      *pageFont
	size      float64
	leading   float64
	charSpace float64
	wordSpace float64
	hscale    float64
}

// walker interprets a page's content streams and collects text runs.
type walker struct {
	page  lpdf.Page
	fonts map[string]*pageFont
	st    textState
	stack []textState
	tm    matrix
	tlm   matrix
	runs  []textRun
}

func newWalker(page lpdf.Page) *walker {
	return &walker{
		page:  page,
		fonts: make(map[string]*pageFont),
		st:    textState{ctm: identity, hscale: 1},
		tm:    identity,
		tlm:   identity,
	}
}

// walk collects the runs of every content stream of the page.
func (w *walker) walk() []textRun {
	contents := w.page.V.Key("Contents")
	switch contents.Kind() {
	case lpdf.Stream:
		lpdf.Interpret(contents, w.op)
	case lpdf.Array:
		for i := 0; i < contents.Len(); i++ {
			if s := contents.Index(i); s.Kind() == lpdf.Stream {
				lpdf.Interpret(s, w.op)
			}
		}
	}
	return w.runs
}

func (w *walker) font(name string) *pageFont {
	if f, ok := w.fonts[name]; ok {
		return f
	}
	f := loadFont(w.page.Font(name))
	w.fonts[name] = f
	return f
}

func (w *walker) op(stk *lpdf.Stack, op string) {
	n := stk.Len()
	args := make([]lpdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}
	num := func(i int) float64 {
		if i < len(args) {
			return args[i].Float64()
		}
		return 0
	}

	switch op {
	case "q":
		w.stack = append(w.stack, w.st)
	case "Q":
		if k := len(w.stack); k > 0 {
			w.st = w.stack[k-1]
			w.stack = w.stack[:k-1]
		}
	case "cm":
		if len(args) == 6 {
			m := matrix{num(0), num(1), num(2), num(3), num(4), num(5)}
			w.st.ctm = m.mul(w.st.ctm)
		}
	case "BT":
		w.tm, w.tlm = identity, identity
	case "Tf":
		if len(args) == 2 {
			w.st.font = w.font(args[0].Name())
			w.st.size = num(1)
		}
	case "Tc":
		w.st.charSpace = num(0)
	case "Tw":
		w.st.wordSpace = num(0)
	case "Tz":
		w.st.hscale = num(0) / 100
	case "TL":
		w.st.leading = num(0)
	case "Td":
		w.moveLine(num(0), num(1))
	case "TD":
		w.st.leading = -num(1)
		w.moveLine(num(0), num(1))
	case "Tm":
		if len(args) == 6 {
			w.tlm = matrix{num(0), num(1), num(2), num(3), num(4), num(5)}
			w.tm = w.tlm
		}
	case "T*":
		w.moveLine(0, -w.st.leading)
	case "Tj":
		if len(args) == 1 {
			w.show(args[0])
		}
	case "'":
		if len(args) == 1 {
			w.moveLine(0, -w.st.leading)
			w.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			w.st.wordSpace = num(0)
			w.st.charSpace = num(1)
			w.moveLine(0, -w.st.leading)
			w.show(args[2])
		}
	case "TJ":
		if len(args) == 1 {
			w.show(args[0])
		}
	}
}

func (w *walker) moveLine(tx, ty float64) {
	w.tlm = translate(tx, ty).mul(w.tlm)
	w.tm = w.tlm
}

// origin returns the current text position in page space and the
// rendered font size.
func (w *walker) origin() (x, y, size float64) {
	m := w.tm.mul(w.st.ctm)
	return m[4], m[5], w.st.size * math.Hypot(m[2], m[3])
}

// show records one Tj string or TJ array as a single run.
func (w *walker) show(v lpdf.Value) {
	f := w.st.font
	if f == nil {
		f = w.font("")
		w.st.font = f
	}
	x, y, size := w.origin()

	var b strings.Builder
	add := func(raw string) {
		b.WriteString(f.decode(raw))
		for _, code := range f.codes(raw) {
			adv := f.width(code)/1000*w.st.size + w.st.charSpace
			if !f.twoByte && code == ' ' {
				adv += w.st.wordSpace
			}
			w.tm = translate(adv*w.st.hscale, 0).mul(w.tm)
		}
	}

	switch v.Kind() {
	case lpdf.String:
		add(v.RawString())
	case lpdf.Array:
		for i := 0; i < v.Len(); i++ {
			el := v.Index(i)
			switch el.Kind() {
			case lpdf.String:
				add(el.RawString())
			case lpdf.Integer, lpdf.Real:
				shift := -el.Float64() / 1000
				w.tm = translate(shift*w.st.size*w.st.hscale, 0).mul(w.tm)
				// Large kerning gaps stand in for spaces.
				if shift > 0.2 && b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
					b.WriteByte(' ')
				}
			}
		}
	default:
		return
	}

	run := textRun{x: x, y: y, size: size, s: b.String()}
	if f.metrics {
		endX, _, _ := w.origin()
		run.w = endX - x
	}
	if strings.TrimSpace(run.s) != "" {
		w.runs = append(w.runs, run)
	}
}

// layoutRows groups runs into lines from the top of the page down and
// orders each line left to right.
func layoutRows(runs []textRun) []string {
	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var rows [][]textRun
	for _, r := range sorted {
		if k := len(rows); k > 0 {
			head := rows[k-1][0]
			if math.Abs(head.y-r.y) <= rowTolerance(head, r) {
				rows[k-1] = append(rows[k-1], r)
				continue
			}
		}
		rows = append(rows, []textRun{r})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, joinRuns(row))
	}
	return lines
}

func rowTolerance(a, b textRun) float64 {
	size := math.Max(a.size, b.size)
	if size <= 0 {
		size = 1
	}
	return size * 0.3
}

// joinRuns concatenates the runs of one line, adding a space where
// runs are visibly apart.
func joinRuns(row []textRun) string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })

	var b strings.Builder
	for i, r := range row {
		if i > 0 && apart(row[i-1], r) {
			b.WriteByte(' ')
		}
		b.WriteString(r.s)
	}
	return strings.TrimSpace(b.String())
}

func apart(prev, cur textRun) bool {
	if strings.HasSuffix(prev.s, " ") || strings.HasPrefix(cur.s, " ") {
		return false
	}
	if prev.w > 0 {
		return cur.x-(prev.x+prev.w) > 0.15*math.Max(cur.size, 1)
	}
	return cur.x > prev.x
}
