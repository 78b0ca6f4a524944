package slash

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Snowflake-typed fields select the matching identifier option type.
type (
	UserID    int64
	ChannelID int64
	RoleID    int64
)

var (
	userIDType    = reflect.TypeOf(UserID(0))
	channelIDType = reflect.TypeOf(ChannelID(0))
	roleIDType    = reflect.TypeOf(RoleID(0))
)

// Binding is a Handler whose options are read from the tags of an argument
// struct:
//
//	type rateArgs struct {
//		User *slash.UserID `slash:"user" description:"The user"`
//		Sides int64        `slash:"sides" description:"Die size" choices:"6,20" default:"6"`
//	}
//
// Recognised tags are slash (option name, required to bind the field),
// description, required ("true"), type (overrides the inferred type), choices
// (comma separated) and default. Pointer fields stay nil when the option is
// absent and has no default.
type Binding struct {
	fn       any
	call     func(ctx context.Context, inv *Invocation) error
	options  []*Option
	defaults map[string]any
	err      error
}

type boundField struct {
	index []int
	name  string
	typ   OptionType
	ptr   bool
}

// Bind wraps fn so that Invocation.Args is decoded into a T before each call.
// Tag errors are reported when the binding is used to build a command.
func Bind[T any](fn func(ctx context.Context, inv *Invocation, args T) error) *Binding {
	b := &Binding{fn: fn, defaults: make(map[string]any)}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		b.err = configErr("bound argument type %s is not a struct", t)
		return b
	}

	var fields []boundField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := sf.Tag.Lookup("slash")
		if !ok || name == "-" {
			continue
		}
		if !sf.IsExported() {
			b.err = configErr("field %s.%s is tagged but unexported", t, sf.Name)
			return b
		}
		field, opt, def, err := bindField(sf, name)
		if err != nil {
			b.err = err
			return b
		}
		fields = append(fields, field)
		b.options = append(b.options, opt)
		if def != nil {
			b.defaults[name] = def
		}
	}

	b.call = func(ctx context.Context, inv *Invocation) error {
		var args T
		v := reflect.ValueOf(&args).Elem()
		for _, f := range fields {
			raw, ok := inv.Args.Lookup(f.name)
			if !ok || raw == nil {
				continue
			}
			if err := assign(v.FieldByIndex(f.index), f, raw); err != nil {
				return err
			}
		}
		return fn(ctx, inv, args)
	}
	return b
}

func (b *Binding) Handle(ctx context.Context, inv *Invocation) error {
	if b.err != nil {
		return b.err
	}
	return b.call(ctx, inv)
}

func (b *Binding) SlashOptions() []*Option { return b.options }

func (b *Binding) SlashDefaults() map[string]any { return b.defaults }

func bindField(sf reflect.StructField, name string) (boundField, *Option, any, error) {
	ft := sf.Type
	field := boundField{index: sf.Index, name: name}
	if ft.Kind() == reflect.Pointer {
		field.ptr = true
		ft = ft.Elem()
	}

	typ, err := inferType(ft)
	if explicit := sf.Tag.Get("type"); explicit != "" {
		t, ok := ParseOptionType(explicit)
		if !ok || t.IsCommand() {
			return field, nil, nil, configErr("field %s: unknown option type %q", sf.Name, explicit)
		}
		typ, err = t, nil
	}
	if err != nil {
		return field, nil, nil, configErr("field %s: %v", sf.Name, err)
	}
	field.typ = typ

	opt := &Option{
		Name:        name,
		Description: sf.Tag.Get("description"),
		Required:    sf.Tag.Get("required") == "true",
		Type:        typ,
	}
	if opt.Description == "" {
		opt.Description = name
	}

	if raw := sf.Tag.Get("choices"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			c = strings.TrimSpace(c)
			val, err := parseScalar(typ, c)
			if err != nil {
				return field, nil, nil, configErr("field %s: choice %q: %v", sf.Name, c, err)
			}
			opt.Choices = append(opt.Choices, &Choice{Name: c, Value: val})
		}
	}

	var def any
	if raw, ok := sf.Tag.Lookup("default"); ok {
		def, err = parseScalar(typ, raw)
		if err != nil {
			return field, nil, nil, configErr("field %s: default %q: %v", sf.Name, raw, err)
		}
	}
	return field, opt, def, nil
}

func inferType(t reflect.Type) (OptionType, error) {
	switch t {
	case userIDType:
		return OptionUser, nil
	case channelIDType:
		return OptionChannel, nil
	case roleIDType:
		return OptionRole, nil
	}
	switch t.Kind() {
	case reflect.String:
		return OptionString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return OptionInteger, nil
	case reflect.Bool:
		return OptionBoolean, nil
	}
	return 0, fmt.Errorf("unsupported field type %s", t)
}

func parseScalar(t OptionType, s string) (any, error) {
	switch t {
	case OptionString:
		return s, nil
	case OptionBoolean:
		return strconv.ParseBool(s)
	default:
		return strconv.ParseInt(s, 10, 64)
	}
}

func assign(dst reflect.Value, f boundField, raw any) error {
	target := dst
	if f.ptr {
		target = reflect.New(dst.Type().Elem()).Elem()
	}

	switch target.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", f.name, err)
		}
		target.SetString(s)
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", f.name, err)
		}
		target.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return fmt.Errorf("option %q: %w", f.name, err)
		}
		if target.OverflowInt(n) {
			return fmt.Errorf("option %q: %d overflows %s", f.name, n, target.Type())
		}
		target.SetInt(n)
	default:
		return fmt.Errorf("option %q: cannot assign to %s", f.name, target.Type())
	}

	if f.ptr {
		dst.Set(target.Addr())
	}
	return nil
}
