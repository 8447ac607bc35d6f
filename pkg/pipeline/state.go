package pipeline

import "fmt"

// StateKind discriminates the pipeline's observable states.
type StateKind int

// Pipeline states, in the order they are normally entered.
const (
	// StateLocated means the project has been located but no work started.
	StateLocated StateKind = iota
	// StateRetrievingData means the pipeline is reading the folder or
	// talking to the language server; Step says which.
	StateRetrievingData
	// StateDataReady means all retrievable input data is present.
	StateDataReady
	// StateAnalyzing means an analysis pass is running; Step says which.
	StateAnalyzing
	// StateReady means the analysis completed; Result is set.
	StateReady
	// StateFailed means the pipeline stopped; Message explains why.
	StateFailed
)

// String returns a short lowercase name.
func (k StateKind) String() string {
	switch k {
	case StateLocated:
		return "located"
	case StateRetrievingData:
		return "retrieving data"
	case StateDataReady:
		return "data ready"
	case StateAnalyzing:
		return "analyzing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Step identifies the sub-stage within the retrieving and analyzing states.
type Step int

// Pipeline steps, in execution order.
const (
	StepNone Step = iota
	StepReadFolder
	StepConnectServer
	StepRetrieveSymbols
	StepRetrieveReferences
	StepBuildArchitecture
	StepLiftCrossScope
	StepComputeMetrics
	StepSort
	StepLayout
	StepBuildViewModels
)

var stepNames = map[Step]string{
	StepNone:               "",
	StepReadFolder:         "readFolder",
	StepConnectServer:      "connectServer",
	StepRetrieveSymbols:    "retrieveSymbols",
	StepRetrieveReferences: "retrieveReferences",
	StepBuildArchitecture:  "buildArchitecture",
	StepLiftCrossScope:     "liftCrossScope",
	StepComputeMetrics:     "computeMetrics",
	StepSort:               "sort",
	StepLayout:             "layout",
	StepBuildViewModels:    "buildViewModels",
}

// String returns the step's camel-case name.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// State is one observable pipeline state. It is a tagged union: Kind
// selects which of the other fields are meaningful. States are immutable
// values; observers always see a complete transition, never a partial
// update.
type State struct {
	Kind StateKind

	// Step is set for StateRetrievingData and StateAnalyzing.
	Step Step

	// Message is set for StateFailed.
	Message string

	// Result is set for StateReady.
	Result *Result
}

// Located returns the initial state.
func Located() State { return State{Kind: StateLocated} }

// RetrievingData returns a data-retrieval state for the given step.
func RetrievingData(step Step) State { return State{Kind: StateRetrievingData, Step: step} }

// DataReady returns the state entered once all inputs are present.
func DataReady() State { return State{Kind: StateDataReady} }

// Analyzing returns an analysis state for the given step.
func Analyzing(step Step) State { return State{Kind: StateAnalyzing, Step: step} }

// Ready returns the terminal success state.
func Ready(result *Result) State { return State{Kind: StateReady, Result: result} }

// Failed returns the terminal failure state.
func Failed(message string) State { return State{Kind: StateFailed, Message: message} }

// Terminal reports whether no further transitions will occur.
func (s State) Terminal() bool {
	return s.Kind == StateReady || s.Kind == StateFailed
}

// Describe returns a human-readable one-liner for progress display.
func (s State) Describe() string {
	switch s.Kind {
	case StateRetrievingData, StateAnalyzing:
		return fmt.Sprintf("%s: %s", s.Kind, s.Step)
	case StateFailed:
		return fmt.Sprintf("failed: %s", s.Message)
	default:
		return s.Kind.String()
	}
}
