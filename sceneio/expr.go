package sceneio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Expr is a number in a scene document. It is either a literal or a tengo
// expression such as "pi/4" or "sqrt(2) * scale". Integer operands divide
// as integers: "1/2" is 0, "1.0/2" is 0.5.
type Expr string

// UnmarshalYAML accepts any scalar.
func (e *Expr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*e = Expr(strings.TrimSpace(s))
	return nil
}

var (
	ErrExpr = errors.New("sceneio: bad expression")

	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// evalTimeout bounds a single expression run.
const evalTimeout = time.Second

// mathNames are the math module members bound as bare names.
var mathNames = []string{
	"pi", "e", "phi", "sqrt2",
	"abs", "sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sqrt", "cbrt", "pow", "exp", "log", "log2", "log10", "hypot",
	"floor", "ceil", "trunc", "min", "max",
}

var prelude = func() string {
	var b strings.Builder
	b.WriteString("__math := import(\"math\")\n")
	for _, n := range mathNames {
		fmt.Fprintf(&b, "%s := __math.%s\n", n, n)
	}
	return b.String()
}()

// Evaluator computes Exprs. Variables bound with Set are visible to every
// later evaluation.
type Evaluator struct {
	vars map[string]float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{vars: make(map[string]float64)}
}

// Set binds name to v. Names shadowing a math member are rejected.
func (ev *Evaluator) Set(name string, v float64) error {
	if !identRe.MatchString(name) || strings.HasPrefix(name, "__") {
		return fmt.Errorf("variable name %q: %w", name, ErrExpr)
	}
	for _, n := range mathNames {
		if n == name {
			return fmt.Errorf("variable %q shadows math.%s: %w", name, n, ErrExpr)
		}
	}
	ev.vars[name] = v
	return nil
}

func (ev *Evaluator) Get(name string) (float64, bool) {
	v, ok := ev.vars[name]
	return v, ok
}

// Eval returns the value of e. Plain numbers skip the script engine.
func (ev *Evaluator) Eval(e Expr) (float64, error) {
	src := string(e)
	if src == "" {
		return 0, fmt.Errorf("empty expression: %w", ErrExpr)
	}
	if f, err := strconv.ParseFloat(src, 64); err == nil {
		return f, nil
	}
	if v, ok := ev.vars[src]; ok {
		return v, nil
	}

	script := tengo.NewScript([]byte(prelude + "__v := (" + src + ")\n"))
	for name, v := range ev.vars {
		if err := script.Add(name, v); err != nil {
			return 0, err
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))
	script.SetMaxAllocs(10000)

	compiled, err := script.Compile()
	if err != nil {
		return 0, fmt.Errorf("%q: %v: %w", src, err, ErrExpr)
	}
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()
	if err := compiled.RunContext(ctx); err != nil {
		return 0, fmt.Errorf("%q: %v: %w", src, err, ErrExpr)
	}

	f, ok := tengo.ToFloat64(compiled.Get("__v").Object())
	if !ok {
		return 0, fmt.Errorf("%q is %s, not a number: %w", src, compiled.Get("__v").ValueType(), ErrExpr)
	}
	return f, nil
}

// EvalAll evaluates each Expr in order.
func (ev *Evaluator) EvalAll(es []Expr) ([]float64, error) {
	out := make([]float64, len(es))
	for i, e := range es {
		v, err := ev.Eval(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
