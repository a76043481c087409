// Package ports defines the interfaces that separate this backend from its
// external collaborators: the checked AST it consumes and the target-types
// adapter it drives. These interfaces enable dependency inversion — the
// application layer depends on these contracts, never on a concrete
// parser or a concrete target-language renderer.
package ports

// TimeUnit names the unit a Time literal was written in.
type TimeUnit int

const (
	Nanoseconds TimeUnit = iota
	Microseconds
	Milliseconds
	Seconds
	Minutes
	Hours
)

// Time is a source-level time literal, magnitude plus unit (§6).
type Time struct {
	Magnitude int64
	Unit      TimeUnit
}

// Type is a source-level type reference, possibly parameterized.
type Type struct {
	Name       string
	TypeParams []TypeParm
}

// TypeParm is one type-parameter binding on a parameterized reactor class.
type TypeParm struct {
	Name string
}

// PortDecl is a port declaration on a reactor class (§6).
type PortDecl struct {
	Name      string
	InferredType Type
	IsInput   bool
}

// TimerDecl is a timer declaration on a reactor class.
type TimerDecl struct {
	Name   string
	Offset Time
	Period Time
}

// ActionOriginDecl distinguishes a logical from a physical action at the
// source level.
type ActionOriginDecl int

const (
	LogicalActionDecl ActionOriginDecl = iota
	PhysicalActionDecl
)

// ActionDecl is an action declaration on a reactor class.
type ActionDecl struct {
	Name         string
	Origin       ActionOriginDecl
	MinimumDelay Time
}

// PortRef names a port either local to a reactor class ("portName") or
// belonging to a named child instantiation ("childName.portName").
type PortRef struct {
	Instantiation string // empty for a local reference
	Port          string
}

// ConnectionWidth describes a bank/multiport connection width on a
// Connection declaration; nil in the AST means a plain 1:1 connection.
type ConnectionWidth struct {
	Width int
}

// ConnectionDecl is a connection statement at the source level (§6):
// left and right port lists, an optional delay, the physical flag, and an
// optional width spec for bank/multiport connections.
type ConnectionDecl struct {
	Left, Right []PortRef
	Delay       *Time
	Physical    bool
	Width       *ConnectionWidth
}

// TriggerRefDecl names a trigger or source/effect reference in a Reaction
// declaration: a port, an action, or the implicit startup/shutdown event.
type TriggerRefDecl struct {
	Port       *PortRef
	Action     string // local action name, empty if this is a port/implicit ref
	IsStartup  bool
	IsShutdown bool
}

// ReactionDecl is a reaction declaration on a reactor class, in the
// declaration order that fixes its priority (§4.1 step 5).
type ReactionDecl struct {
	Triggers []TriggerRefDecl
	Sources  []TriggerRefDecl // read-only, non-triggering
	Effects  []TriggerRefDecl
}

// InstantiationDecl creates a named child of a given reactor class.
type InstantiationDecl struct {
	Name      string
	ClassName string
}

// Reactor is a reactor class declaration: the unit elaborate() expands
// into instances (§4.1, §6).
type Reactor struct {
	ClassName      string
	TypeParams     []TypeParm
	Inputs         []PortDecl
	Outputs        []PortDecl
	Timers         []TimerDecl
	Actions        []ActionDecl
	Reactions      []ReactionDecl
	Instantiations []InstantiationDecl
	Connections    []ConnectionDecl
	IsMain         bool
}

// ASTSource is the checked, name-resolved program elaborate() consumes
// (§1, §6): a reactor-class table plus the name of the main class.
type ASTSource interface {
	// MainClassName returns the class name of the program's root reactor.
	MainClassName() string

	// LookupClass returns the reactor class declaration for name, and
	// whether it was found — elaborate() reports
	// ElaborationError::UnknownReactorClass when it is not.
	LookupClass(name string) (*Reactor, bool)

	// AllClassNames returns every declared class name, in no particular
	// order. Used only to build "did you mean" suggestions on an unknown
	// class diagnostic; never for elaboration itself.
	AllClassNames() []string
}
