package settlement

import (
	"fmt"

	"github.com/lunfardo314/easydex/dexargs"
	"go.uber.org/zap"
)

type (
	Option func(*options)

	options struct {
		log *zap.SugaredLogger
	}
)

// WithLogger traces the steps at debug level
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

func makeOptions(opts []Option) *options {
	ret := &options{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.log == nil {
		ret.log = zap.NewNop().Sugar()
	}
	return ret
}

// Run is the lock entry point: decodes own args and applies the settlement rule
func Run(env Environment, opts ...Option) error {
	data, err := env.LoadSelfArgs()
	if err != nil {
		return fmt.Errorf("loading args: %w", err)
	}
	args, err := dexargs.Decode(data)
	if err != nil {
		return err
	}
	_, err = Validate(args, env, opts...)
	return err
}
