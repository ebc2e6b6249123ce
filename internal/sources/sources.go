// Package sources assembles the provided values of one invocation from
// command-line switches, --var entries, .env files, the process
// environment and the OS keyring, remembering where each value came from.
package sources

import (
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/logger"
	"github.com/phillarmonic/paramflow/internal/secrets"
)

// Origin names the source a provided value was read from
type Origin string

const (
	OriginFlag    Origin = "flag"
	OriginVar     Origin = "var"
	OriginEnvFile Origin = "env-file"
	OriginEnv     Origin = "env"
	OriginKeyring Origin = "keyring"
)

// EnvPrefix marks process environment variables that provide parameters:
// PARAMFLOW_VAR_DEPLOY_ENV provides deploy_env
const EnvPrefix = "PARAMFLOW_VAR_"

// Provided is the merged input of one invocation
type Provided struct {
	Values  map[string]any
	Origins map[string]Origin
}

// Names returns the provided names sorted
func (p *Provided) Names() []string {
	names := make([]string, 0, len(p.Values))
	for name := range p.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inputs are the raw values collected by the command line
type Inputs struct {
	// Flags maps parameter names to values given with per-parameter switches
	Flags map[string]string

	// Vars holds the parsed --var entries
	Vars map[string]string

	// EnvFiles holds variables read from the .env hierarchy
	EnvFiles map[string]string

	// Environ lists process environment entries (KEY=value); nil skips them
	Environ []string

	// Workflow keys keyring lookups; empty skips the keyring
	Workflow string
}

// Builder merges inputs against a definition set
type Builder struct {
	set    *parameter.Set
	store  secrets.Store
	logger *log.Logger
}

// NewBuilder creates a builder. store may be nil to disable keyring lookups.
func NewBuilder(set *parameter.Set, store secrets.Store, l *log.Logger) *Builder {
	if l == nil {
		l = logger.Discard()
	}
	return &Builder{set: set, store: store, logger: l}
}

// Build merges the inputs. Higher-precedence sources are applied last:
// keyring, process environment, env files, --var, flags.
//
// --var names that match no parameter are kept verbatim so the resolver can
// report them as extra variables. Env file and environment keys only
// provide declared parameters.
func (b *Builder) Build(in Inputs) *Provided {
	out := &Provided{
		Values:  make(map[string]any),
		Origins: make(map[string]Origin),
	}
	set := func(name, value string, origin Origin) {
		out.Values[name] = value
		out.Origins[name] = origin
	}

	byKey := make(map[string]string, b.set.Len())
	for _, name := range b.set.Names() {
		byKey[Normalize(name)] = name
	}

	if b.store != nil && in.Workflow != "" {
		for _, p := range b.set.Parameters() {
			if !p.Secret {
				continue
			}
			value, err := b.store.Get(in.Workflow, p.Name)
			switch {
			case err == nil:
				set(p.Name, value, OriginKeyring)
			case secrets.IsNotFound(err):
				b.logger.Debug("no keyring value", "param", p.Name)
			default:
				b.logger.Warn("keyring lookup failed", "param", p.Name, "error", err)
			}
		}
	}

	for _, entry := range in.Environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
			continue
		}
		if name, known := byKey[Normalize(key[len(EnvPrefix):])]; known {
			set(name, value, OriginEnv)
		}
	}

	for _, key := range sortedKeys(in.EnvFiles) {
		if name, known := byKey[Normalize(key)]; known {
			set(name, in.EnvFiles[key], OriginEnvFile)
		}
	}

	for _, key := range sortedKeys(in.Vars) {
		name := key
		if declared, known := byKey[Normalize(key)]; known {
			name = declared
		}
		set(name, in.Vars[key], OriginVar)
	}

	for _, key := range sortedKeys(in.Flags) {
		set(key, in.Flags[key], OriginFlag)
	}

	for _, name := range out.Names() {
		b.logger.Debug("provided", "param", name, "origin", out.Origins[name], "value", b.display(name, out.Values[name]))
	}
	return out
}

// Environ returns the process environment for Inputs.Environ
func Environ() []string {
	return os.Environ()
}

func (b *Builder) display(name string, value any) any {
	if p, ok := b.set.Get(name); ok && p.Secret {
		return "****"
	}
	return value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
