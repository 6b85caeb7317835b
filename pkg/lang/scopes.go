package lang

// ----------------------------------------------------------------------------
// General information

// The code generator's per-function environment: a flat variable name -> frame offset
// map plus the next free local slot, grounded on the teacher's 'jack.ScopeTable' (itself
// a push/pop-per-function-scope discipline over a handful of named scopes). This language
// has no block scope (see spec's design notes), so unlike ScopeTable's
// local/field/parameter/static four-way split there is exactly one flat map per function
// invocation of the walk; entering a nested block never pushes a new one.

// A fresh FrameScope is created on function entry and discarded on exit; it never
// survives two different 'Func' emissions.
type FrameScope struct {
	offsets map[string]int
	next    int // offset assigned to the *next* local declared, see DeclareLocal
}

// Builds an empty FrameScope, ready to have parameters bound and locals declared into it.
// Per the stack-frame layout, the first local slot starts at -20 from fp.
func NewFrameScope() *FrameScope {
	return &FrameScope{offsets: map[string]int{}, next: -20}
}

// Binds parameter 'name' (declared at position 'index', 0-based) to its fixed frame
// offset '4*index - 16'.
func (s *FrameScope) BindParam(name string, index int) {
	s.offsets[name] = 4*index - 16
}

// Records a new local variable at the next free slot and advances the free-slot counter
// by 8 (one word of padding per local, to keep the frame 8-byte aligned). Returns the
// offset assigned. The Var lowering in codegen.go does not use it: its 'push {r0, ip}',
// emitted before this call, is what puts the value in that slot.
func (s *FrameScope) DeclareLocal(name string) int {
	offset := s.next - 4
	s.offsets[name] = offset
	s.next -= 8
	return offset
}

// Looks up the frame offset bound to 'name', the second return is false if undeclared.
func (s *FrameScope) Resolve(name string) (int, bool) {
	offset, ok := s.offsets[name]
	return offset, ok
}
