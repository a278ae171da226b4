package container

import (
	"fmt"

	"github.com/xraph/strand/pkg/directive"
	"github.com/xraph/strand/pkg/errors"
	"github.com/xraph/strand/pkg/logger"
	"github.com/xraph/strand/pkg/registry"
)

// buildSpec constructs an instance from a parsed specification with all
// nested references and specs resolved first, depth-first and in
// document order. Decoration runs before the instance is returned, so
// no caller ever observes an undecorated instance.
func (c *Container) buildSpec(spec *directive.Spec, res *resolution) (interface{}, error) {
	target, err := c.registry.Lookup(spec.Class)
	if err != nil {
		return nil, err
	}

	var instance interface{}
	if spec.Method != "" {
		instance, err = c.buildPositional(target, spec, res)
	} else {
		instance, err = c.buildNamed(target, spec, res)
	}
	if err != nil {
		return nil, err
	}

	if err := c.decorate(instance, spec, res); err != nil {
		return nil, err
	}
	return instance, nil
}

// buildPositional invokes the explicit $method entry point with the
// resolved $args in sequence order.
func (c *Container) buildPositional(target registry.Target, spec *directive.Spec, res *resolution) (interface{}, error) {
	factory, ok := target.Methods[spec.Method]
	if !ok {
		return nil, errors.ErrUnknownMethod(spec.Class, spec.Method)
	}

	args := make([]interface{}, 0, len(spec.Args))
	for i, argNode := range spec.Args {
		value, err := c.resolveNode(argNode, res)
		if err != nil {
			return nil, err
		}
		value, err = c.registry.Coerce(spec.Class, registry.PositionalSlot(i), value)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	instance, err := safeCall(spec.Class, func() (interface{}, error) {
		return factory(args)
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("constructed via method",
		logger.String("class", spec.Class),
		logger.String("method", spec.Method),
		logger.Int("args", len(args)),
	)
	return instance, nil
}

// buildNamed invokes the conventional named-pairs constructor with the
// non-directive keys in document insertion order.
func (c *Container) buildNamed(target registry.Target, spec *directive.Spec, res *resolution) (interface{}, error) {
	if target.New == nil {
		return nil, errors.ErrUnknownMethod(spec.Class, "new")
	}

	args := registry.NewArgs()
	for _, pair := range spec.Named {
		value, err := c.resolveNode(pair.Value, res)
		if err != nil {
			return nil, err
		}
		value, err = c.registry.Coerce(spec.Class, pair.Key, value)
		if err != nil {
			return nil, err
		}
		args.Append(pair.Key, value)
	}

	instance, err := safeCall(spec.Class, func() (interface{}, error) {
		return target.New(args)
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("constructed",
		logger.String("class", spec.Class),
		logger.Strings("args", args.Names()),
	)
	return instance, nil
}

// safeCall runs a construction entry point, converting both returned
// errors and panics into construction errors carrying the cause.
func safeCall(class string, call func() (interface{}, error)) (instance interface{}, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.ErrConstruction(class, fmt.Errorf("constructor panic: %v", recovered))
		}
	}()

	instance, callErr := call()
	if callErr != nil {
		return nil, errors.ErrConstruction(class, callErr)
	}
	return instance, nil
}
