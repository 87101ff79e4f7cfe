package chunk

import "clox/pkg/array"

// LineRun maps Count consecutive instructions to Line.
type LineRun struct {
	Line  int
	Count int
}

// LineTable is a run-length encoded instruction index -> source line mapping.
type LineTable struct {
	runs  array.Array[LineRun]
	total int
}

// Record maps the next instruction to line. Only the most recent run is merged.
func (t *LineTable) Record(line int) {
	if last := t.runs.Last(); last != nil && last.Line == line {
		last.Count++
	} else {
		t.runs.Append(LineRun{Line: line, Count: 1})
	}
	t.total++
}

// Lookup returns the line recorded for instruction index, or -1 when index was never
// recorded. Runs are scanned in order; the line value is never used as a position.
func (t *LineTable) Lookup(index int) int {
	if index < 0 || index >= t.total {
		return -1
	}

	seen := 0
	for _, run := range t.runs.Slice() {
		seen += run.Count
		if index < seen {
			return run.Line
		}
	}
	return -1
}

// Len returns the number of recorded instructions.
func (t *LineTable) Len() int {
	return t.total
}

// Runs returns the encoded runs. Callers must not modify the result.
func (t *LineTable) Runs() []LineRun {
	return t.runs.Slice()
}

func (t *LineTable) Free() {
	t.runs.Free()
	t.total = 0
}
