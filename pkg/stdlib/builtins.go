package stdlib

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/thomasrohde/yap/pkg/evaluator"
)

// Host carries the process resources built-ins write to or draw from.
type Host struct {
	Stdout io.Writer
	// RandomSeed seeds Math.random; 0 seeds from the clock.
	RandomSeed int64
}

// RegisterDefaults adds all built-in functions and constants.
func RegisterDefaults(r *Registry, host Host) {
	out := host.Stdout
	if out == nil {
		out = os.Stdout
	}
	r.Register(Fn{Name: "print", Arity: -1, Execute: printTo(out)})

	seed := host.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	registerMath(r, rand.New(rand.NewSource(seed)))
}

// Display renders print arguments: top-level strings raw, everything else
// in its inspected form.
func Display(v evaluator.Value) string {
	if s, ok := v.(evaluator.String); ok {
		return s.Value
	}
	return evaluator.Inspect(v)
}

func printTo(w io.Writer) func(args []evaluator.Value) (evaluator.Value, error) {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Display(a)
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return nil, fmt.Errorf("write failed: %w", err)
		}
		return evaluator.NewUndefined(), nil
	}
}
