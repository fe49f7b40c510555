package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LynnColeArt/winograd/internal/logutil"
)

// Source is a kernel program: a named set of entry points. A Source is
// immutable once passed to Build.
type Source struct {
	Name    string
	Entries map[string]KernelFunc
}

// Program is a built Source. It maps entry point names to handles and is
// safe for concurrent use.
type Program struct {
	name    string
	kernels map[string]KernelHandle
}

// KernelHandle is a launchable entry point of a built Program.
type KernelHandle struct {
	name string
	fn   KernelFunc
}

type programEntry struct {
	once sync.Once
	prog *Program
	err  error
}

// Build builds src for this context. Each source name is built at most
// once per context; later calls return the cached Program.
func (ctx *Context) Build(src *Source) (*Program, error) {
	if src == nil || src.Name == "" {
		return nil, NewInvalidArgError("Build", "program source must be named")
	}

	ctx.mu.Lock()
	entry, ok := ctx.programs[src.Name]
	if !ok {
		entry = &programEntry{}
		ctx.programs[src.Name] = entry
	}
	ctx.mu.Unlock()

	entry.once.Do(func() {
		entry.prog, entry.err = build(src)
		if entry.err == nil {
			logutil.Logger().Debug("program built",
				"program", src.Name,
				"kernels", entry.prog.Names())
		}
	})
	return entry.prog, entry.err
}

func build(src *Source) (*Program, error) {
	if len(src.Entries) == 0 {
		return nil, NewExecutionError("Build", fmt.Sprintf("program %q has no entry points", src.Name), nil)
	}
	p := &Program{
		name:    src.Name,
		kernels: make(map[string]KernelHandle, len(src.Entries)),
	}
	for name, fn := range src.Entries {
		if fn == nil {
			return nil, NewExecutionError("Build",
				fmt.Sprintf("program %q: entry point %q has no body", src.Name, name), nil)
		}
		p.kernels[name] = KernelHandle{name: name, fn: fn}
	}
	return p, nil
}

// Name returns the program name.
func (p *Program) Name() string {
	return p.name
}

// Kernel looks up an entry point by name.
func (p *Program) Kernel(name string) (KernelHandle, error) {
	k, ok := p.kernels[name]
	if !ok {
		return KernelHandle{}, NewInvalidArgError("Kernel",
			fmt.Sprintf("program %q has no kernel %q", p.name, name))
	}
	return k, nil
}

// Names lists the entry points in sorted order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.kernels))
	for name := range p.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the entry point name.
func (k KernelHandle) Name() string {
	return k.name
}
