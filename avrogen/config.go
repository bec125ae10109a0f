package avrogen

import (
	"regexp"
	"strings"

	"github.com/CognitoIQ/go-avro/internal/gen"
)

// A Config holds user-defined overrides and filters that are used when
// generating Go source code from an Avro schema.
type Config struct {
	logger   Logger
	loglevel int
	// Struct tag keys written for every record field.
	tags []string
	// Declare Schema, Marshal and Unmarshal methods on records.
	methods bool
	// Fields for which this returns true won't be a part
	// of any record.
	filterFields func(name string) bool
	// Transform for names
	nameTransform func(string) string
}

func (cfg *Config) errorf(format string, v ...interface{}) {
	if cfg.logger != nil {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) debugf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 3 {
		cfg.logger.Printf(format, v...)
	}
}

// An Option is used to customize a Config.
type Option func(*Config) Option

// DefaultOptions are the default options for Go source code generation.
// Records are tagged for the github.com/hamba/avro/v2 package and carry
// methods to encode and decode themselves.
var DefaultOptions = []Option{
	Tags("avro"),
	RecordMethods(true),
}

// The Option method is used to configure an existing configuration.
// The return value of the Option method can be used to revert the
// final option to its previous setting.
func (cfg *Config) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(cfg)
	}
	return previous
}

// Types implementing the Logger interface can receive
// debug information from the code generation process.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for warnings and debug
// information about the code generation process.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		return LogOutput(prev)
	}
}

// LogLevel sets the verbosity of messages sent to the error log
// configured with the LogOutput option. The level parameter should
// be a positive integer between 1 and 5, with 5 providing the greatest
// verbosity.
func LogLevel(level int) Option {
	return func(cfg *Config) Option {
		prev := cfg.loglevel
		cfg.loglevel = level
		return LogLevel(prev)
	}
}

// Tags sets the struct tag keys written for each record field. Every
// key is given the Avro field name.
func Tags(keys ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.tags
		cfg.tags = keys
		return Tags(prev...)
	}
}

// RecordMethods controls whether Schema, Marshal and Unmarshal methods
// are declared on generated record types.
func RecordMethods(enabled bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.methods
		cfg.methods = enabled
		return RecordMethods(prev)
	}
}

// IgnoreFields defines a list of record fields that should not be
// declared in the Go type.
func IgnoreFields(names ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.filterFields
		cfg.filterFields = func(name string) bool {
			for _, match := range names {
				if name == match {
					return true
				}
			}
			return false
		}
		return replaceFieldFilter(prev)
	}
}

func replaceFieldFilter(fn func(string) bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.filterFields
		cfg.filterFields = fn
		return replaceFieldFilter(prev)
	}
}

// Replace allows for substitution rules for all identifiers to
// be specified. If an invalid regular expression is called, no action
// is taken. The Replace option is additive; subsitutions will be
// applied in the order that each option was applied in.
func Replace(pat, repl string) Option {
	reg, err := regexp.Compile(pat)

	return func(cfg *Config) Option {
		prev := cfg.nameTransform
		return replaceNameTransform(func(name string) string {
			if prev != nil {
				name = prev(name)
			}
			if err != nil {
				cfg.logf("Invalid regex %q passed to Replace", pat)
				return name
			}
			r := reg.ReplaceAllString(name, repl)
			if r != name {
				cfg.debugf("changed name %s -> %s", name, r)
			}
			return r
		})(cfg)
	}
}

func replaceNameTransform(fn func(string) string) Option {
	return func(cfg *Config) Option {
		prev := cfg.nameTransform
		cfg.nameTransform = fn
		return replaceNameTransform(prev)
	}
}

func (cfg *Config) public(name string) string {
	if cfg.nameTransform != nil {
		name = cfg.nameTransform(name)
	}
	return gen.Public(name).Name
}

func (cfg *Config) tag(field string) string {
	parts := make([]string, 0, len(cfg.tags))
	for _, key := range cfg.tags {
		parts = append(parts, key+`:"`+field+`"`)
	}
	return strings.Join(parts, " ")
}
