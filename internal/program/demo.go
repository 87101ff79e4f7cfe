package program

import "sort"

var demos = map[string]func() *Program{
	"return": func() *Program {
		return &Program{Name: "return", Steps: []Step{{Op: "return", Line: 1}}}
	},

	// 100 ones folded by 99 additions.
	"sum": func() *Program {
		p := &Program{Name: "sum"}
		for i := 0; i < 100; i++ {
			p.Steps = append(p.Steps, Step{Op: "constant", Number: number(1), Line: 1})
		}
		for i := 0; i < 99; i++ {
			p.Steps = append(p.Steps, Step{Op: "add", Line: 2})
		}
		p.Steps = append(p.Steps, Step{Op: "return", Line: 3})
		return p
	},

	// 260 loads, one per line, crossing into the long constant encoding.
	"long": func() *Program {
		p := &Program{Name: "long"}
		for i := 0; i < 260; i++ {
			p.Steps = append(p.Steps, Step{Op: "constant", Number: number(1.2), Line: i})
		}
		p.Steps = append(p.Steps, Step{Op: "return", Line: 260})
		return p
	},
}

// Demo returns a built-in program by name.
func Demo(name string) (*Program, bool) {
	build, ok := demos[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Demos lists the built-in program names.
func Demos() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func number(f float64) *float64 {
	return &f
}
