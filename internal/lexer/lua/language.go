package lua

import (
	"slices"
	"strings"
	"sync"

	glua "github.com/yuin/gopher-lua"
)

const (
	keywordList = "and|break|do|else|elseif|end|false|for|function|goto|if|in|local|nil|not|or|repeat|return|then|true|until|while"

	globalList = "__add|__band|__bnot|__bor|__bxor|__call|__concat|__div|__eq|__idiv|__index|__le|__len|__lt|__mod|__mul|__newindex|__pow|__shl|__shr|__sub|__unm|_ENV|_G|assert|collectgarbage|dofile|error|findtable|getmetatable|ipairs|load|loadfile|loadstring|module|next|pairs|pcall|print|float|rawequal|rawget|rawlen|rawset|require|select|self|setmetatable|tointeger|tonumber|tostring|type|unpack|xpcall"

	extFunctionList = "this|activity|call|compile|dump|each|enum|import|loadbitmap|loadlayout|loadmenu|service|set|task|thread|timer"
)

var basePackages = map[string]string{
	"coroutine": "create|isyieldable|resume|running|status|wrap|yield",
	"debug":     "debug|gethook|getinfo|getlocal|getmetatable|getregistry|getupvalue|getuservalue|sethook|setlocal|setmetatable|setupvalue|setuservalue|traceback|upvalueid|upvaluejoin",
	"io":        "close|flush|input|lines|open|output|popen|read|stderr|stdin|stdout|tmpfile|type|write",
	"luakt":     "astable|bindClass|clear|coding|createArray|createProxy|instanceof|loadLib|loaded|luapath|new|newInstance|package|tostring",
	"math":      "abs|acos|asin|atan|atan2|ceil|cos|cosh|deg|exp|floor|fmod|frexp|huge|ldexp|log|log10|max|maxinteger|min|mininteger|modf|pi|pow|rad|round|random|randomseed|sin|sinh|sqrt|tan|tanh|tointeger|type|ult",
	"os":        "clock|date|difftime|execute|exit|getenv|remove|rename|setlocale|time|tmpname",
	"package":   "config|cpath|loaded|loaders|loadlib|path|preload|searchers|searchpath|seeall",
	"string":    "byte|char|dump|find|format|gfind|gmatch|gsub|len|lower|match|pack|packsize|rep|reverse|sub|unpack|upper",
	"table":     "concat|foreach|foreachi|insert|maxn|move|pack|remove|sort|unpack",
	"utf8":      "char|charpattern|codepoint|codes|len|offset",
	"bit":       "bor|band|bxor|bnot|lshift|rshift|arshift|rol|ror|bswap",
	"ffi":       "abi|arch|cast|cdef|copy|errno|fill|gc|istype|load|metatype|new|os|sizeof|string|typeof",
	"jit":       "arch|bc|dump|flush|log|off|on|opt|status|version",
}

// Language holds the Lua word tables. It is immutable after construction
// and may be shared by any number of documents and scans.
type Language struct {
	keywords map[string]struct{}
	names    map[string]struct{}
	packages map[string]map[string]struct{}
}

var (
	defaultLang     *Language
	defaultLangOnce sync.Once
)

// Default returns a shared Language built by NewLanguage.
func Default() *Language {
	defaultLangOnce.Do(func() {
		defaultLang = NewLanguage()
	})
	return defaultLang
}

// NewLanguage builds the word tables. Package members are the static lists
// merged with whatever the embedded Lua runtime's standard libraries
// export.
func NewLanguage() *Language {
	l := &Language{
		keywords: wordSet(keywordList),
		names:    wordSet(globalList + "|" + extFunctionList),
		packages: make(map[string]map[string]struct{}, len(basePackages)),
	}
	for pkg, members := range basePackages {
		l.packages[pkg] = wordSet(members)
		l.names[pkg] = struct{}{}
	}
	for pkg, members := range runtimeMembers() {
		set, ok := l.packages[pkg]
		if !ok {
			set = make(map[string]struct{}, len(members))
			l.packages[pkg] = set
			l.names[pkg] = struct{}{}
		}
		for _, m := range members {
			set[m] = struct{}{}
		}
	}
	return l
}

func wordSet(list string) map[string]struct{} {
	words := strings.Split(list, "|")
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// runtimeMembers lists the string keys of each standard library table of
// a fresh gopher-lua state.
func runtimeMembers() map[string][]string {
	L := glua.NewState(glua.Options{SkipOpenLibs: true})
	defer L.Close()

	libs := []struct {
		name string
		open glua.LGFunction
	}{
		{glua.LoadLibName, glua.OpenPackage},
		{glua.BaseLibName, glua.OpenBase},
		{glua.TabLibName, glua.OpenTable},
		{glua.IoLibName, glua.OpenIo},
		{glua.OsLibName, glua.OpenOs},
		{glua.StringLibName, glua.OpenString},
		{glua.MathLibName, glua.OpenMath},
		{glua.DebugLibName, glua.OpenDebug},
		{glua.CoroutineLibName, glua.OpenCoroutine},
	}

	out := make(map[string][]string)
	for _, lib := range libs {
		L.Push(L.NewFunction(lib.open))
		L.Push(glua.LString(lib.name))
		if err := L.PCall(1, 0, nil); err != nil {
			continue
		}
		if lib.name == glua.BaseLibName {
			continue
		}
		tbl, ok := L.GetGlobal(lib.name).(*glua.LTable)
		if !ok {
			continue
		}
		tbl.ForEach(func(k, _ glua.LValue) {
			if s, ok := k.(glua.LString); ok && !strings.HasPrefix(string(s), "_") {
				out[lib.name] = append(out[lib.name], string(s))
			}
		})
	}
	return out
}

// Name returns "lua".
func (l *Language) Name() string { return "lua" }

// IsKeyword reports whether s is a reserved word.
func (l *Language) IsKeyword(s string) bool {
	_, ok := l.keywords[s]
	return ok
}

// IsName reports whether s is a global function, a host extension or a
// package name.
func (l *Language) IsName(s string) bool {
	_, ok := l.names[s]
	return ok
}

// IsBasePackage reports whether s is a standard package.
func (l *Language) IsBasePackage(s string) bool {
	_, ok := l.packages[s]
	return ok
}

// IsBaseWord reports whether member belongs to package pkg.
func (l *Language) IsBaseWord(pkg, member string) bool {
	set, ok := l.packages[pkg]
	if !ok {
		return false
	}
	_, ok = set[member]
	return ok
}

// Packages returns the package names in sorted order.
func (l *Language) Packages() []string {
	out := make([]string, 0, len(l.packages))
	for pkg := range l.packages {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out
}

// Members returns the members of pkg in sorted order.
func (l *Language) Members(pkg string) []string {
	set := l.packages[pkg]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
