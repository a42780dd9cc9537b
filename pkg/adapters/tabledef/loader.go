// Package tabledef loads rule and action tables from YAML definitions.
//
// Table authoring stays host data: the definition names states, targets,
// and the guard/action callbacks to attach, and the loader resolves those
// names through a registry.Registry. A guard name that is not registered
// falls back to a truthy-register-key guard (the key's value in a
// domain.MapRegisters bag must be truthy), which covers simple flag-driven
// tables without any Go code.
package tabledef

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/bramble/pkg/domain"
	"github.com/aretw0/bramble/pkg/registry"
)

// TableDef is the root of a YAML table definition.
type TableDef struct {
	States []StateDef `mapstructure:"states"`
}

// StateDef declares one state, its callbacks, and its ordered rules.
// A terminal state is declared with no rules.
type StateDef struct {
	ID      int       `mapstructure:"id"`
	OnEnter string    `mapstructure:"on_enter"`
	OnExit  string    `mapstructure:"on_exit"`
	Rules   []RuleDef `mapstructure:"rules"`
}

// RuleDef declares one candidate transition.
type RuleDef struct {
	Target int    `mapstructure:"target"`
	Guard  string `mapstructure:"guard"`
	Action string `mapstructure:"action"`
	Final  bool   `mapstructure:"final"`
}

// Load reads a YAML table definition from path and resolves it against
// reg.
func Load(path string, reg *registry.Registry) (domain.RuleTable, domain.ActionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read table definition: %w", err)
	}
	return Parse(data, reg)
}

// Parse decodes a YAML table definition and resolves callback names
// against reg.
func Parse(data []byte, reg *registry.Registry) (domain.RuleTable, domain.ActionTable, error) {
	def, err := ParseDef(data)
	if err != nil {
		return nil, nil, err
	}
	return Resolve(def, reg)
}

// ParseDef decodes a YAML table definition without resolving callbacks,
// for tooling that only inspects the table shape.
func ParseDef(data []byte) (*TableDef, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse table definition: %w", err)
	}

	var def TableDef
	if err := mapstructure.Decode(raw, &def); err != nil {
		return nil, fmt.Errorf("decode table definition: %w", err)
	}
	if len(def.States) == 0 {
		return nil, fmt.Errorf("table definition declares no states")
	}
	return &def, nil
}

// Resolve builds the engine tables from a decoded definition.
func Resolve(def *TableDef, reg *registry.Registry) (domain.RuleTable, domain.ActionTable, error) {
	rules := make(domain.RuleTable, len(def.States))
	actions := make(domain.ActionTable)

	for _, sd := range def.States {
		id := domain.StateID(sd.ID)
		if _, dup := rules[id]; dup {
			return nil, nil, fmt.Errorf("duplicate state id %d", sd.ID)
		}

		seq := make([]domain.Rule, 0, len(sd.Rules))
		for i, rd := range sd.Rules {
			rule := domain.Rule{Target: domain.StateID(rd.Target), Final: rd.Final}
			if rd.Guard != "" {
				rule.Guard = resolveGuard(reg, rd.Guard)
			}
			if rd.Action != "" {
				action, err := reg.Action(rd.Action)
				if err != nil {
					return nil, nil, fmt.Errorf("state %d rule %d: %w", sd.ID, i, err)
				}
				rule.Action = action
			}
			seq = append(seq, rule)
		}
		rules[id] = seq

		pair := domain.ActionPair{}
		if sd.OnEnter != "" {
			action, err := reg.Action(sd.OnEnter)
			if err != nil {
				return nil, nil, fmt.Errorf("state %d on_enter: %w", sd.ID, err)
			}
			pair.OnEnter = action
		}
		if sd.OnExit != "" {
			action, err := reg.Action(sd.OnExit)
			if err != nil {
				return nil, nil, fmt.Errorf("state %d on_exit: %w", sd.ID, err)
			}
			pair.OnExit = action
		}
		if pair.OnEnter != nil || pair.OnExit != nil {
			actions[id] = pair
		}
	}

	return rules, actions, nil
}

// resolveGuard prefers a registered guard; otherwise the name is treated
// as a register key that must hold a truthy value.
func resolveGuard(reg *registry.Registry, name string) domain.Guard {
	if g, err := reg.Guard(name); err == nil {
		return g
	}
	return TruthyKeyGuard(name)
}

// TruthyKeyGuard returns a guard that passes when key holds a truthy value
// in a domain.MapRegisters bag. Missing keys and non-map register bags are
// falsy.
func TruthyKeyGuard(key string) domain.Guard {
	return func(ctx context.Context, v domain.View) (bool, error) {
		bag, ok := v.Registers().(domain.MapRegisters)
		if !ok {
			return false, nil
		}
		return truthy(bag[key]), nil
	}
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0" && val != "no"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case nil:
		return false
	default:
		return true
	}
}
