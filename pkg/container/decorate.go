package container

import (
	"github.com/xraph/strand/pkg/capability"
	"github.com/xraph/strand/pkg/directive"
	"github.com/xraph/strand/pkg/document"
	"github.com/xraph/strand/pkg/errors"
	"github.com/xraph/strand/pkg/events"
	"github.com/xraph/strand/pkg/logger"
)

// boundMethod is a dispatchable method with its receiver already bound
type boundMethod func(args []interface{}) (interface{}, error)

// decorate applies the optional post-construction passes to a freshly
// built instance: capability composition first, then event bindings.
// Neither pass re-runs construction or invokes a handler.
func (c *Container) decorate(instance interface{}, spec *directive.Spec, res *resolution) error {
	if err := c.applyWith(instance, spec); err != nil {
		return err
	}
	return c.applyOn(instance, spec, res)
}

// applyWith composes the named capability sets onto this instance only,
// in list order. Later capabilities win when they override the same
// method name.
func (c *Container) applyWith(instance interface{}, spec *directive.Spec) error {
	if len(spec.With) == 0 {
		return nil
	}
	holder, ok := instance.(capability.Holder)
	if !ok {
		return errors.ErrConstruction(spec.Class,
			errors.New("instance does not accept capability composition"))
	}
	for _, name := range spec.With {
		capSet, err := c.caps.Lookup(name)
		if err != nil {
			return err
		}
		holder.AttachCapability(capSet)
		c.log.Debug("capability attached",
			logger.String("class", spec.Class),
			logger.String("capability", name),
		)
	}
	return nil
}

// applyOn registers the $on handlers on the instance's emitter. The
// helper resolves through the normal resolver, so referenced helpers
// share the cached instance and inline specs build fresh.
func (c *Container) applyOn(instance interface{}, spec *directive.Spec, res *resolution) error {
	if len(spec.On) == 0 {
		return nil
	}
	emitter, ok := instance.(events.Emitter)
	if !ok {
		return errors.ErrConstruction(spec.Class,
			errors.New("instance does not emit events, cannot apply $on"))
	}

	for _, binding := range spec.On {
		helper, helperClass, err := c.resolveBindingTarget(binding.Target, res)
		if err != nil {
			return err
		}
		call, err := c.methodOn(helper, helperClass, binding.Handler)
		if err != nil {
			return err
		}

		event := binding.Event
		handlerName := binding.Handler
		emitter.On(event, func(payload interface{}) {
			if _, err := call([]interface{}{payload}); err != nil {
				c.log.Error("event handler failed",
					logger.String("event", event),
					logger.String("handler", handlerName),
					logger.Error(err),
				)
			}
		})
		c.log.Debug("event handler bound",
			logger.String("class", spec.Class),
			logger.String("event", event),
			logger.String("handler", handlerName),
		)
	}
	return nil
}

// resolveBindingTarget resolves a $on helper node to its instance and,
// when determinable, the class name used for method dispatch.
func (c *Container) resolveBindingTarget(node *document.Node, res *resolution) (interface{}, string, error) {
	switch directive.Classify(node) {
	case directive.KindReference:
		ref, err := directive.AsReference(node)
		if err != nil {
			return nil, "", err
		}
		instance, err := c.resolveReference(ref, res)
		if err != nil {
			return nil, "", err
		}
		class := ""
		if len(ref.Path) == 0 {
			class = c.classOf(ref.Target)
		}
		return instance, class, nil

	case directive.KindSpec:
		spec, err := directive.AsSpec(node)
		if err != nil {
			return nil, "", err
		}
		instance, err := c.buildSpec(spec, res)
		if err != nil {
			return nil, "", err
		}
		return instance, spec.Class, nil

	default:
		return nil, "", errors.ErrDirectiveConflict("$on binding target must be a reference or a specification")
	}
}

// methodOn resolves a method name against an instance: attached
// capabilities first (last attached wins), then the base target's
// instance methods.
func (c *Container) methodOn(instance interface{}, class, name string) (boundMethod, error) {
	if holder, ok := instance.(capability.Holder); ok {
		if method, ok := holder.ResolveMethod(name); ok {
			return func(args []interface{}) (interface{}, error) {
				return method(instance, args)
			}, nil
		}
	}

	if class != "" {
		target, err := c.registry.Lookup(class)
		if err == nil {
			if method, ok := target.InstanceMethods[name]; ok {
				return func(args []interface{}) (interface{}, error) {
					return method(instance, args)
				}, nil
			}
		}
	}

	if class == "" {
		class = "instance"
	}
	return nil, errors.ErrUnknownMethod(class, name)
}
