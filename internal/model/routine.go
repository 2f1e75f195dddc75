package model

// RoutineType distinguishes stored procedures from stored functions.
type RoutineType string

const (
	RoutineProcedure RoutineType = "PROCEDURE"
	RoutineFunction  RoutineType = "FUNCTION"
)

// Routine is the read-only view of one stored procedure or function.
type Routine struct {
	Name    string
	Type    RoutineType
	Options string
	Body    string
	Params  string

	def string
}

// NewRoutine returns an empty routine ready to be populated by a loader.
func NewRoutine(name string, typ RoutineType) *Routine {
	return &Routine{Name: name, Type: typ}
}

// SetDef sets the full CREATE [PROCEDURE|FUNCTION] text.
func (r *Routine) SetDef(def string) { r.def = def }

// Def returns the full CREATE [PROCEDURE|FUNCTION] text.
func (r *Routine) Def() string { return r.def }

// Signature returns the triple the differ compares changed routines on.
func (r *Routine) Signature() (options, body, params string) {
	return r.Options, r.Body, r.Params
}
