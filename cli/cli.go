// Package cli binds tagged records to command lines through spf13/pflag.
// Fields are described in the `opt` namespace:
//
//	type Options struct {
//		Verbose bool          `opt:"v,help=print more"`
//		Timeout time.Duration `opt:"t,timeout"`
//		Input   string        `opt:"positional"`
//		Output  string        `opt:"positional,skipmissing"`
//	}
//
// A flag without a long name is named after its field in kebab case.
package cli

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"tagged-serde/diagnostic"
	"tagged-serde/internal/common"
	"tagged-serde/internal/match"
	"tagged-serde/node"
	"tagged-serde/tag"
)

// Format lists the members of option records.
var Format = &node.Format{
	Name:       "opt",
	Namespaces: []string{"opt"},
}

// Binding ties the flags of a FlagSet and the positional arguments of a
// command line to the fields of one record.
type Binding struct {
	flags       *pflag.FlagSet
	positionals []positional
}

type positional struct {
	name  string
	info  tag.OptInfo
	value *value
}

// Bind registers a flag on fs for every flag field of the struct ptr
// points to. The current field values become the flag defaults.
func Bind(ptr any, fs *pflag.FlagSet) (*Binding, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, diagnostic.Configuration("options must be a non-nil pointer to a struct, got %T", ptr)
	}

	b := &Binding{flags: fs}

	for _, m := range node.Members(Format, rv.Elem()) {
		opt := tag.ParseOpt(m.Raw)
		if opt.Inert() {
			continue
		}

		if !m.Value.CanSet() {
			return nil, diagnostic.Configuration("option field %s is not settable", m.Name)
		}

		if opt.Positional {
			v, err := newValue(m.Value)
			if err != nil {
				return nil, diagnostic.WithKey(err, m.Name)
			}

			b.positionals = append(b.positionals, positional{name: match.KebabCase(m.Name), info: opt, value: v})

			continue
		}

		long := opt.Long
		if long == "" {
			long = match.KebabCase(m.Name)
		}

		if err := b.flag(m.Value, long, opt); err != nil {
			return nil, diagnostic.WithKey(err, long)
		}
	}

	for i, p := range b.positionals {
		if node.Dispatch(p.value.rv.Type()) == node.DispatcherSlice && i != len(b.positionals)-1 {
			return nil, diagnostic.WithKey(diagnostic.Configuration("only the last positional argument can be repeated"), p.name)
		}
	}

	return b, nil
}

func (b *Binding) flag(rv reflect.Value, long string, opt tag.OptInfo) error {
	var short string
	if opt.Short != 0 {
		short = string(opt.Short)
	}

	if b.flags.Lookup(long) != nil {
		return diagnostic.Configuration("flag --%s is defined twice", long)
	}

	if short != "" && b.flags.ShorthandLookup(short) != nil {
		return diagnostic.Configuration("flag -%s is defined twice", short)
	}

	switch p := rv.Addr().Interface().(type) {
	case *[]string:
		b.flags.StringSliceVarP(p, long, short, *p, opt.Help)
		return nil
	case *time.Duration:
		b.flags.DurationVarP(p, long, short, *p, opt.Help)
		return nil
	}

	v, err := newValue(rv)
	if err != nil {
		return err
	}

	fl := b.flags.VarPF(v, long, short, opt.Help)
	if rv.Kind() == reflect.Bool {
		fl.NoOptDefVal = "true"
	}

	return nil
}

// Apply fills the positional fields from the arguments left after flag
// parsing and returns the arguments nothing consumed.
func (b *Binding) Apply(args []string) ([]string, error) {
	for _, p := range b.positionals {
		if node.Dispatch(p.value.rv.Type()) == node.DispatcherSlice {
			for _, a := range args {
				if err := p.value.Set(a); err != nil {
					return nil, diagnostic.WithKey(err, p.name)
				}
			}

			args = nil

			continue
		}

		if len(args) == 0 {
			if p.info.SkipMissing {
				continue
			}

			return nil, diagnostic.WithKey(diagnostic.MissingField(), p.name)
		}

		if err := p.value.Set(args[0]); err != nil {
			return nil, diagnostic.WithKey(err, p.name)
		}

		args = args[1:]
	}

	return args, nil
}

// Parse reads args into the struct ptr points to and returns the
// arguments left over. -h and --help yield pflag.ErrHelp.
//
// On error *ptr is left unchanged.
func Parse(ptr any, args []string) ([]string, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, diagnostic.Configuration("options must be a non-nil pointer to a struct, got %T", ptr)
	}

	staged := reflect.New(rv.Elem().Type())
	staged.Elem().Set(rv.Elem())

	fs := pflag.NewFlagSet(common.TypeName(rv.Elem().Type()), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	b, err := Bind(staged.Interface(), fs)
	if err != nil {
		return nil, err
	}

	if err := fs.Parse(args); err != nil {
		return nil, b.parseError(err)
	}

	rest, err := b.Apply(fs.Args())
	if err != nil {
		return nil, err
	}

	rv.Elem().Set(staged.Elem())

	return rest, nil
}

func (b *Binding) parseError(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}

	name, ok := strings.CutPrefix(err.Error(), "unknown flag: --")
	if !ok {
		return diagnostic.Wrap(err)
	}

	var names []string

	b.flags.VisitAll(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})

	msg := fmt.Sprintf("unknown flag `--%s`", name)
	if hint, ok := match.Suggest(name, names); ok {
		msg += fmt.Sprintf("; did you mean `--%s`?", hint)
	}

	return diagnostic.FormatViolation("%s", msg)
}

// Usage renders the synopsis and flag table of the record ptr points to.
func Usage(name string, ptr any) string {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	b, err := Bind(ptr, fs)
	if err != nil {
		return fmt.Sprintf("%s: %v\n", name, err)
	}

	var sb strings.Builder

	sb.WriteString("Usage: ")
	sb.WriteString(name)

	if fs.HasFlags() {
		sb.WriteString(" [flags]")
	}

	for _, p := range b.positionals {
		arg := "<" + p.name + ">"
		if node.Dispatch(p.value.rv.Type()) == node.DispatcherSlice {
			arg += "..."
		}

		if p.info.SkipMissing {
			arg = "[" + arg + "]"
		}

		sb.WriteString(" ")
		sb.WriteString(arg)
	}

	sb.WriteString("\n")

	if fs.HasFlags() {
		sb.WriteString("\nFlags:\n")
		sb.WriteString(fs.FlagUsages())
	}

	return sb.String()
}
