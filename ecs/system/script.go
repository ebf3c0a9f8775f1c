package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/tilephysics/ecs"
	"github.com/milk9111/tilephysics/ecs/component"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/physics"
	"github.com/milk9111/tilephysics/prefabs"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ScriptSystem runs each entity's tengo script once per tick. Scripts see
// the physics world through a fixed set of functions; see scriptFunctions.
type ScriptSystem struct {
	lifecycle *physics.Lifecycle
	// LoadScript returns script source by name.
	LoadScript func(name string) ([]byte, error)

	runtimes map[ecs.Entity]*scriptRuntime
	log      *logrus.Entry
}

type scriptRuntime struct {
	name     string
	compiled *tengo.Compiled

	// world and entity are swapped in before every run.
	world  *ecs.World
	entity ecs.Entity
	failed bool
}

func NewScriptSystem(lifecycle *physics.Lifecycle) *ScriptSystem {
	return &ScriptSystem{
		lifecycle:  lifecycle,
		LoadScript: prefabs.LoadScript,
		runtimes:   make(map[ecs.Entity]*scriptRuntime),
		log:        logger.For("script"),
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	for e, rt := range s.runtimes {
		script, ok := ecs.Get(w, e, component.ScriptComponent.Kind())
		if !ok || script.Name != rt.name {
			delete(s.runtimes, e)
		}
	}

	ecs.ForEach(w, component.ScriptComponent.Kind(), func(e ecs.Entity, script *component.Script) {
		rt, err := s.runtime(w, e, script.Name)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"entity": e.ID(), "script": script.Name}).Warn("script: load failed")
			// Remember the failure so a broken script is reported once.
			s.runtimes[e] = &scriptRuntime{name: script.Name, failed: true}
			return
		}
		if rt.failed {
			return
		}
		rt.world, rt.entity = w, e
		if err := rt.compiled.Run(); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"entity": e.ID(), "script": script.Name}).Warn("script: run failed")
		}
		rt.world = nil
	})
}

func (s *ScriptSystem) runtime(w *ecs.World, e ecs.Entity, name string) (*scriptRuntime, error) {
	if rt, ok := s.runtimes[e]; ok && rt.name == name {
		return rt, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("script: empty script name")
	}

	src, err := s.LoadScript(name)
	if err != nil {
		return nil, err
	}

	rt := &scriptRuntime{name: name}
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "fmt"))

	var originX, originY float64
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		originX, originY = t.X, t.Y
	}
	_ = script.Add("entity_id", e.ID())
	_ = script.Add("origin_x", originX)
	_ = script.Add("origin_y", originY)
	for fnName, fn := range s.scriptFunctions(rt) {
		if err := script.Add(fnName, fn); err != nil {
			return nil, err
		}
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	rt.compiled = compiled
	s.runtimes[e] = rt
	return rt, nil
}

func (s *ScriptSystem) scriptFunctions(rt *scriptRuntime) map[string]*tengo.UserFunction {
	fns := map[string]*tengo.UserFunction{}

	fns["has_body"] = &tengo.UserFunction{Name: "has_body", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(rt.bodyOrRequest()), nil
	}}

	// can_create_body is false while no world exists, so scripts that run
	// before the first build don't queue bodies into nothing.
	fns["body_id"] = &tengo.UserFunction{Name: "body_id", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if rt.world == nil {
			return &tengo.Int{}, nil
		}
		id, _ := BodyID(rt.world, rt.entity)
		return &tengo.Int{Value: int64(id)}, nil
	}}

	fns["can_create_body"] = &tengo.UserFunction{Name: "can_create_body", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(s.lifecycle != nil && s.lifecycle.World() != nil && !rt.bodyOrRequest()), nil
	}}

	fns["create_body"] = &tengo.UserFunction{Name: "create_body", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if rt.world == nil || rt.bodyOrRequest() {
			return tengo.FalseValue, nil
		}
		var spec physics.BodySpec
		if len(args) > 0 {
			decoded, err := decodeBodySpec(objectToAny(args[0]))
			if err != nil {
				return nil, err
			}
			spec = decoded
		} else {
			script, ok := ecs.Get(rt.world, rt.entity, component.ScriptComponent.Kind())
			if !ok || script.Body == nil {
				return tengo.FalseValue, nil
			}
			spec = *script.Body
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		_ = ecs.Add(rt.world, rt.entity, component.BodyRequestComponent.Kind(), &component.BodyRequest{Spec: spec})
		return tengo.TrueValue, nil
	}}

	fns["set_gravity"] = &tengo.UserFunction{Name: "set_gravity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if rt.world == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[0])
		y, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		_ = ecs.Add(rt.world, rt.entity, component.GravityRequestComponent.Kind(), &component.GravityRequest{X: x, Y: y})
		return tengo.TrueValue, nil
	}}

	fns["gravity"] = &tengo.UserFunction{Name: "gravity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		var x, y float64
		if s.lifecycle != nil && s.lifecycle.World() != nil {
			x, y = s.lifecycle.World().Gravity()
		}
		return floatPair(x, y), nil
	}}

	fns["touching"] = &tengo.UserFunction{Name: "touching", Value: func(args ...tengo.Object) (tengo.Object, error) {
		c, ok := rt.contacts()
		if !ok {
			return &tengo.Array{}, nil
		}
		return intArray(c.Active), nil
	}}

	fns["triggered"] = &tengo.UserFunction{Name: "triggered", Value: func(args ...tengo.Object) (tengo.Object, error) {
		c, ok := rt.contacts()
		if !ok {
			return &tengo.Array{}, nil
		}
		return intArray(c.Triggered), nil
	}}

	fns["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if rt.world != nil {
			if t, ok := ecs.Get(rt.world, rt.entity, component.TransformComponent.Kind()); ok {
				return floatPair(t.X, t.Y), nil
			}
		}
		return floatPair(0, 0), nil
	}}

	return fns
}

func (rt *scriptRuntime) bodyOrRequest() bool {
	if rt.world == nil {
		return false
	}
	return ecs.Has(rt.world, rt.entity, component.PhysicsBodyComponent.Kind()) ||
		ecs.Has(rt.world, rt.entity, component.BodyRequestComponent.Kind())
}

func (rt *scriptRuntime) contacts() (*component.Contacts, bool) {
	if rt.world == nil {
		return nil, false
	}
	return ecs.Get(rt.world, rt.entity, component.ContactsComponent.Kind())
}

// decodeBodySpec round-trips a script map through yaml so scripts use the
// same keys as prefab files.
func decodeBodySpec(raw any) (physics.BodySpec, error) {
	var spec physics.BodySpec
	b, err := yaml.Marshal(raw)
	if err != nil {
		return spec, err
	}
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, fmt.Errorf("script: body spec: %w", err)
	}
	return spec, nil
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatPair(x, y float64) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func intArray(ids []int) tengo.Object {
	out := make([]tengo.Object, 0, len(ids))
	for _, id := range ids {
		out = append(out, &tengo.Int{Value: int64(id)})
	}
	return &tengo.Array{Value: out}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
