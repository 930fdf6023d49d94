// Package luavm runs module scripts in an embedded, sandboxed Lua VM. Each
// script gets its own global environment layered over the shared API, and
// every call into Lua is protected: script errors come back as Go errors.
package luavm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

var (
	// ErrUnknownScript is returned for a script id with no source.
	ErrUnknownScript = errors.New("unknown script")
	// ErrUnknownFunction is returned when a script does not define the
	// function being called.
	ErrUnknownFunction = errors.New("unknown script function")
)

const (
	// DefaultAbilityFunc is called when an ability names no function.
	DefaultAbilityFunc = "on_activate"
	// AIFunc is the function an AI script defines.
	AIFunc = "ai_action"
	// ConsoleScript is the script id recorded for callbacks created at the
	// console.
	ConsoleScript = "console"
)

// Runner is the Lua implementation of engine.ScriptRunner.
type Runner struct {
	eng     *engine.Engine
	L       *lua.LState
	envs    map[string]*lua.LTable
	console *lua.LTable
	// running is the stack of script ids currently executing.
	running []string
}

// New creates a runner bound to eng and installs it as eng's script runner.
func New(eng *engine.Engine) *Runner {
	r := &Runner{
		eng:  eng,
		L:    NewState(),
		envs: map[string]*lua.LTable{},
	}
	r.registerTypes()
	r.registerGame()
	r.registerRandom()
	r.console = r.newEnv()
	eng.SetScripts(r)
	return r
}

// Close releases the VM.
func (r *Runner) Close() {
	r.L.Close()
}

func (r *Runner) newEnv() *lua.LTable {
	env := r.L.NewTable()
	mt := r.L.NewTable()
	mt.RawSetString("__index", r.L.G.Global)
	r.L.SetMetatable(env, mt)
	return env
}

// env returns the global environment of a script, running its top level
// the first time it is needed.
func (r *Runner) env(id string) (*lua.LTable, error) {
	if env, ok := r.envs[id]; ok {
		return env, nil
	}
	src, ok := r.eng.Defs.Script(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScript, id)
	}
	fn, err := r.L.Load(strings.NewReader(src), id)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", id, err)
	}
	env := r.newEnv()
	fn.Env = env
	if err := r.protected(id, fn, 0); err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	r.envs[id] = env
	return env, nil
}

// call runs function name of script id with args.
func (r *Runner) call(id, name string, args ...lua.LValue) error {
	env, err := r.env(id)
	if err != nil {
		return err
	}
	fn, ok := env.RawGetString(name).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownFunction, id, name)
	}
	if err := r.protected(id, fn, 0, args...); err != nil {
		return fmt.Errorf("%s.%s: %w", id, name, err)
	}
	return nil
}

func (r *Runner) protected(id string, fn *lua.LFunction, nret int, args ...lua.LValue) error {
	r.running = append(r.running, id)
	defer func() { r.running = r.running[:len(r.running)-1] }()
	return r.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
}

// currentScript is the id of the innermost script being executed.
func (r *Runner) currentScript() string {
	if len(r.running) == 0 {
		return ""
	}
	return r.running[len(r.running)-1]
}

// RunTrigger calls the trigger's function with the parent and target.
func (r *Runner) RunTrigger(t types.Trigger, parent, target *entity.EntityState) error {
	return r.call(t.Script, t.Func, r.entityValue(parent), r.entityValue(target))
}

// RunAbility calls the ability's activation function with the parent and a
// table describing the ability.
func (r *Runner) RunAbility(parent *entity.EntityState, ab *types.AbilityDef) error {
	name := ab.OnActivate
	if name == "" {
		name = DefaultAbilityFunc
	}
	info := r.L.NewTable()
	info.RawSetString("id", lua.LString(ab.ID))
	info.RawSetString("name", lua.LString(ab.Name))
	info.RawSetString("ap_cost", lua.LNumber(ab.APCost))
	info.RawSetString("cooldown", lua.LNumber(ab.Cooldown))
	return r.call(ab.Script, name, r.entityValue(parent), info)
}

// RunAI calls ai_action in the script named by the actor's AI field.
func (r *Runner) RunAI(parent *entity.EntityState) error {
	return r.call(parent.Actor.Def.AI, AIFunc, r.entityValue(parent))
}

// RunConsole evaluates a line typed at the console. The line is tried as an
// expression first so "game.area_id()" prints its value. Console globals
// persist between lines.
func (r *Runner) RunConsole(source string) (string, error) {
	fn, err := r.L.Load(strings.NewReader("return "+source), ConsoleScript)
	if err != nil {
		fn, err = r.L.Load(strings.NewReader(source), ConsoleScript)
		if err != nil {
			return "", err
		}
	}
	fn.Env = r.console
	if err := r.protected(ConsoleScript, fn, 1); err != nil {
		return "", err
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)
	if ret == lua.LNil {
		return "", nil
	}
	return ret.String(), nil
}

// RestoreCallback rebuilds a saved callback.
func (r *Runner) RestoreCallback(data script.CallbackData) (script.Callback, error) {
	if data.Script != ConsoleScript {
		if _, ok := r.eng.Defs.Script(data.Script); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScript, data.Script)
		}
	}
	funcs := make(map[string]string, len(data.Funcs))
	for k, v := range data.Funcs {
		funcs[k] = v
	}
	data.Funcs = funcs
	return &callback{r: r, data: data}, nil
}

// world is the script view of the current area.
func (r *Runner) world() script.World {
	return r.eng.ScriptWorld()
}

func (r *Runner) warn(msg string, fields logrus.Fields) {
	fields["script"] = r.currentScript()
	logger.Log.WithFields(fields).Warn(msg)
}
