package codec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/codec/internal/layout"
	"github.com/wippyai/rawcodec/codec/internal/types"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/schema"
)

var (
	encoderType = reflect.TypeFor[rawcodec.Encoder]()
	decoderType = reflect.TypeFor[rawcodec.Decoder]()
)

// Compiler turns Go types into compiled types and caches them. Plans come
// from `raw` struct tags unless one was registered for the type. A Compiler
// is safe for concurrent use.
type Compiler struct {
	cfg      *Config
	cache    sync.Map // reflect.Type -> *types.CompiledType
	plans    sync.Map // reflect.Type -> *schema.Plan
	defaults sync.Map // path -> reflect.Value of a func() T
	mu       sync.Mutex
}

func NewCompiler() *Compiler {
	return NewCompilerWithConfig(nil)
}

// NewCompilerWithConfig creates a compiler with custom limits.
// Pass nil to use defaults.
func NewCompilerWithConfig(cfg *Config) *Compiler {
	return &Compiler{cfg: cfg.normalized()}
}

// Config returns the effective configuration.
func (c *Compiler) Config() *Config {
	return c.cfg
}

// Register makes plan the codec plan of t instead of the one derived from
// its struct tags. Plan fields and variants bind to Go fields by name,
// ignoring case, dashes and underscores. It must be called before t is
// first compiled.
func (c *Compiler) Register(t reflect.Type, plan *schema.Plan) error {
	if t == nil || plan == nil {
		return errors.InvalidParam(errors.PhaseCompile, nil, "Register needs a type and a plan")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return errors.New(errors.PhaseCompile, errors.CodeInvalidParam).
			GoType(t.String()).
			Detail("plans bind to structs, got %s", t.Kind()).
			Build()
	}
	if _, done := c.cache.Load(t); done {
		return errors.New(errors.PhaseCompile, errors.CodeAlreadyExists).
			GoType(t.String()).
			Detail("type already compiled, register plans before first use").
			Build()
	}
	c.plans.Store(t, plan)
	return nil
}

// Bind registers every plan whose name matches the Go type name of one of
// the samples. Samples without a matching plan are reported as not found.
func (c *Compiler) Bind(plans []*schema.Plan, samples ...any) error {
	byName := make(map[string]*schema.Plan, len(plans))
	for _, p := range plans {
		byName[p.Name] = p
	}
	for _, s := range samples {
		t := reflect.TypeOf(s)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil {
			return errors.InvalidParam(errors.PhaseCompile, nil, "Bind sample is nil")
		}
		p, ok := byName[t.Name()]
		if !ok {
			return errors.NotFound(errors.PhaseCompile, fmt.Sprintf("no plan named %q for %s", t.Name(), t))
		}
		if err := c.Register(t, p); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefault registers fn, a func() T, as the default named path.
// Defaults declared as `default=path` look for a method of that name on the
// container first and fall back to registered functions.
func (c *Compiler) RegisterDefault(path string, fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.Type().NumIn() != 0 || v.Type().NumOut() != 1 {
		return errors.New(errors.PhaseCompile, errors.CodeInvalidParam).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("default %q must be a func with no arguments and one result", path).
			Build()
	}
	c.defaults.Store(path, v)
	return nil
}

// Compile returns the compiled form of goType, compiling and caching it on
// first use. Pointer types compile to their element type.
func (c *Compiler) Compile(goType reflect.Type) (*types.CompiledType, error) {
	if goType == nil {
		return nil, errors.InvalidParam(errors.PhaseCompile, nil, "Go type cannot be nil")
	}
	for goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*types.CompiledType), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*types.CompiledType), nil
	}

	st := &compileState{pending: make(map[reflect.Type]*types.CompiledType)}
	ct, err := c.compile(goType, st)
	if err != nil {
		return nil, err
	}
	for t, done := range st.pending {
		c.cache.Store(t, done)
	}
	c.cache.Store(goType, ct)
	rawcodec.Logger().Debug("compiled type",
		zap.Stringer("type", goType),
		zap.Stringer("kind", ct.Kind),
		zap.Int("size", ct.Size),
		zap.Int("nested", len(st.pending)))
	return ct, nil
}

// compileState tracks the structs of one Compile call so recursive types
// resolve to the same compiled value.
type compileState struct {
	pending map[reflect.Type]*types.CompiledType
}

func (c *Compiler) compile(t reflect.Type, st *compileState) (*types.CompiledType, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*types.CompiledType), nil
	}
	if ct, ok := st.pending[t]; ok {
		return ct, nil
	}
	if t.Kind() == reflect.Pointer {
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return nil, err
		}
		return &types.CompiledType{GoType: t, Elem: elem, Kind: types.KindOption, Size: -1}, nil
	}
	if ct, ok, err := c.compileCustom(t); ok || err != nil {
		return ct, err
	}

	switch t.Kind() {
	case reflect.Bool:
		return primitive(t, types.KindBool), nil
	case reflect.Uint8:
		return primitive(t, types.KindU8), nil
	case reflect.Int8:
		return primitive(t, types.KindS8), nil
	case reflect.Uint16:
		return primitive(t, types.KindU16), nil
	case reflect.Int16:
		return primitive(t, types.KindS16), nil
	case reflect.Uint32:
		return primitive(t, types.KindU32), nil
	case reflect.Int32:
		return primitive(t, types.KindS32), nil
	case reflect.Uint64, reflect.Uint:
		return primitive(t, types.KindU64), nil
	case reflect.Int64, reflect.Int:
		return primitive(t, types.KindS64), nil
	case reflect.Float32:
		return primitive(t, types.KindF32), nil
	case reflect.Float64:
		return primitive(t, types.KindF64), nil
	case reflect.String:
		return &types.CompiledType{GoType: t, Kind: types.KindString, Size: -1}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &types.CompiledType{GoType: t, Kind: types.KindBytes, Size: -1}, nil
		}
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return nil, err
		}
		return &types.CompiledType{GoType: t, Elem: elem, Kind: types.KindSlice, Size: -1}, nil
	case reflect.Array:
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return nil, err
		}
		ct := &types.CompiledType{GoType: t, Elem: elem, Len: t.Len(), Kind: types.KindArray}
		ct.Size = layout.Size(ct)
		return ct, nil
	case reflect.Map:
		key, err := c.compile(t.Key(), st)
		if err != nil {
			return nil, err
		}
		elem, err := c.compile(t.Elem(), st)
		if err != nil {
			return nil, err
		}
		return &types.CompiledType{GoType: t, Key: key, Elem: elem, Kind: types.KindMap, Size: -1}, nil
	case reflect.Struct:
		return c.compileStruct(t, st)
	default:
		return nil, errors.New(errors.PhaseCompile, errors.CodeNotSupport).
			GoType(t.String()).
			Detail("no native layout for %s values", t.Kind()).
			Build()
	}
}

func primitive(t reflect.Type, k types.Kind) *types.CompiledType {
	return &types.CompiledType{GoType: t, Kind: k, Size: k.FixedSize()}
}

// compileCustom recognizes types that implement the buffer protocol
// themselves. Decoding always needs the pointer receiver.
func (c *Compiler) compileCustom(t reflect.Type) (*types.CompiledType, bool, error) {
	ptr := reflect.PointerTo(t)
	valueEnc := t.Implements(encoderType)
	if !valueEnc && !ptr.Implements(encoderType) {
		return nil, false, nil
	}
	if !ptr.Implements(decoderType) {
		return nil, true, errors.New(errors.PhaseCompile, errors.CodeNotSupport).
			GoType(t.String()).
			Detail("implements rawcodec.Encoder but *%s does not implement rawcodec.Decoder", t).
			Build()
	}
	ct := &types.CompiledType{GoType: t, Kind: types.KindCustom, PtrCustom: !valueEnc}
	ct.Size = layout.Size(ct)
	return ct, true, nil
}

func (c *Compiler) plan(t reflect.Type) (*schema.Plan, error) {
	if p, ok := c.plans.Load(t); ok {
		return p.(*schema.Plan), nil
	}
	decl, err := schema.FromType(t)
	if err != nil {
		return nil, err
	}
	return schema.Resolve(decl)
}

func (c *Compiler) compileStruct(t reflect.Type, st *compileState) (*types.CompiledType, error) {
	plan, err := c.plan(t)
	if err != nil {
		return nil, err
	}

	ct := &types.CompiledType{GoType: t, Plan: plan, Size: -1}
	st.pending[t] = ct

	switch plan.Shape {
	case schema.ShapeEnum:
		ct.Kind = types.KindEnum
		if plan.Identifier != schema.IdentifierNone {
			ct.Kind = types.KindIdentifier
		}
		if ct.Variants, err = c.bindVariants(t, plan, st); err != nil {
			return nil, err
		}
	case schema.ShapeUnit:
		ct.Kind = types.KindUnit
	default:
		ct.Kind = types.KindStruct
		if plan.Shape == schema.ShapeTuple || plan.Shape == schema.ShapeNewtype {
			ct.Kind = types.KindTuple
		}
		if ct.Fields, ct.Optionals, err = c.bindFields(t, plan, st); err != nil {
			return nil, err
		}
	}

	if plan.Default.Applies() {
		if ct.Default, err = c.defaultFunc(t, t, plan.Default); err != nil {
			return nil, err
		}
	}
	ct.Size = layout.Size(ct)
	return ct, nil
}

func (c *Compiler) bindFields(t reflect.Type, plan *schema.Plan, st *compileState) ([]types.Field, int, error) {
	fields := make([]types.Field, 0, len(plan.Fields))
	optionals := 0
	for i := range plan.Fields {
		fp := &plan.Fields[i]
		sf, ok := findGoField(t, fp.Name)
		if !ok {
			return nil, 0, errors.New(errors.PhaseCompile, errors.CodeNotFound).
				Path(plan.Name, fp.Name).
				GoType(t.String()).
				Detail("no Go field for planned field %q", fp.Name).
				Build()
		}
		ft, err := c.compile(sf.Type, st)
		if err != nil {
			return nil, 0, errors.At(err, fp.Name)
		}

		f := types.Field{
			Type:     ft,
			Plan:     fp,
			Name:     sf.Name,
			Index:    sf.Index[0],
			Optional: sf.Type.Kind() == reflect.Pointer,
			Bit:      -1,
		}
		if plan.OptimizeOption && f.Optional && !fp.SkipSerialize {
			f.Bit = optionals
			optionals++
		}
		switch fp.Default.Kind {
		case schema.DefaultZero:
			zero := reflect.Zero(sf.Type)
			f.Default = func() reflect.Value { return zero }
		case schema.DefaultPath:
			if f.Default, err = c.defaultFunc(t, sf.Type, fp.Default); err != nil {
				return nil, 0, errors.At(err, fp.Name)
			}
		}
		fields = append(fields, f)
	}
	return fields, optionals, nil
}

func (c *Compiler) bindVariants(t reflect.Type, plan *schema.Plan, st *compileState) ([]types.Variant, error) {
	variants := make([]types.Variant, 0, len(plan.Variants))
	for i := range plan.Variants {
		vp := &plan.Variants[i]
		sf, ok := findGoField(t, vp.Name)
		if !ok {
			return nil, errors.New(errors.PhaseCompile, errors.CodeNotFound).
				Path(plan.Name, vp.Name).
				GoType(t.String()).
				Detail("no Go field for planned variant %q", vp.Name).
				Build()
		}
		v := types.Variant{Plan: vp, Name: sf.Name, Index: sf.Index[0]}

		switch {
		case sf.Type.Kind() == reflect.Bool:
			if vp.Shape != schema.ShapeUnit {
				return nil, variantMismatch(t, vp, sf)
			}
			v.Unit = true
		case sf.Type.Kind() != reflect.Pointer:
			return nil, variantMismatch(t, vp, sf)
		case vp.Shape == schema.ShapeNewtype:
			pt, err := c.compile(sf.Type.Elem(), st)
			if err != nil {
				return nil, errors.At(err, vp.Name)
			}
			v.Type = pt
		default:
			pt, err := c.compilePayload(sf.Type.Elem(), vp, st)
			if err != nil {
				return nil, errors.At(err, vp.Name)
			}
			v.Type = pt
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// compilePayload compiles the struct behind a struct, tuple or unit variant
// with the variant's own field plans. The result is not cached: the same Go
// struct may carry different renames in another enum.
func (c *Compiler) compilePayload(t reflect.Type, vp *schema.VariantPlan, st *compileState) (*types.CompiledType, error) {
	if t.Kind() != reflect.Struct {
		return nil, errors.New(errors.PhaseCompile, errors.CodeInvalidParam).
			GoType(t.String()).
			Detail("%s variant %s needs a struct payload", vp.Shape, vp.Name).
			Build()
	}
	plan := &schema.Plan{
		Name:   vp.Name,
		Names:  vp.Names,
		Shape:  vp.Shape,
		Fields: vp.Fields,
	}
	ct := &types.CompiledType{GoType: t, Plan: plan, Kind: types.KindStruct, Size: -1}
	switch vp.Shape {
	case schema.ShapeUnit:
		ct.Kind = types.KindUnit
	case schema.ShapeTuple:
		ct.Kind = types.KindTuple
	}
	if ct.Kind != types.KindUnit {
		var err error
		if ct.Fields, ct.Optionals, err = c.bindFields(t, plan, st); err != nil {
			return nil, err
		}
	}
	ct.Size = layout.Size(ct)
	return ct, nil
}

func variantMismatch(t reflect.Type, vp *schema.VariantPlan, sf reflect.StructField) error {
	return errors.New(errors.PhaseCompile, errors.CodeInvalidParam).
		Path(vp.Name).
		GoType(t.String()).
		Detail("%s variant cannot bind to field %s of type %s", vp.Shape, sf.Name, sf.Type).
		Build()
}

// defaultFunc resolves a default policy to a constructor for want. A path
// names a method on *owner or a function added with RegisterDefault.
func (c *Compiler) defaultFunc(owner, want reflect.Type, d schema.DefaultPolicy) (func() reflect.Value, error) {
	if d.Kind != schema.DefaultPath {
		return func() reflect.Value { return reflect.New(want).Elem() }, nil
	}

	if m, ok := reflect.PointerTo(owner).MethodByName(d.Path); ok {
		mt := m.Type
		if mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0).AssignableTo(want) {
			return func() reflect.Value {
				return m.Func.Call([]reflect.Value{reflect.New(owner)})[0]
			}, nil
		}
	}
	if fn, ok := c.defaults.Load(d.Path); ok {
		f := fn.(reflect.Value)
		if f.Type().Out(0).AssignableTo(want) {
			return func() reflect.Value { return f.Call(nil)[0] }, nil
		}
		return nil, errors.New(errors.PhaseCompile, errors.CodeInvalidParam).
			GoType(want.String()).
			Detail("default %q returns %s", d.Path, f.Type().Out(0)).
			Build()
	}
	return nil, errors.NotFound(errors.PhaseCompile,
		fmt.Sprintf("default %q: no method on *%s and no registered function", d.Path, owner))
}

// findGoField matches by: 1) exact Go name, 2) name ignoring case, dashes
// and underscores, 3) position when name is a tuple index.
func findGoField(t reflect.Type, name string) (reflect.StructField, bool) {
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() && len(sf.Index) == 1 {
		return sf, true
	}
	norm := normalizeName(name)
	var exported []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get(schema.TagName) == "-" {
			continue
		}
		if normalizeName(sf.Name) == norm {
			return sf, true
		}
		exported = append(exported, sf)
	}
	if idx, err := strconv.Atoi(name); err == nil && idx >= 0 && idx < len(exported) {
		return exported[idx], true
	}
	return reflect.StructField{}, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(s))
}
