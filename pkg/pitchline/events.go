package pitchline

// Stage identifies one pipeline step for progress reporting.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageDownmix  Stage = "downmix"
	StageAnalyze  Stage = "analyze"
	StageResample Stage = "resample"
	StageEncode   Stage = "encode"
	StageRemux    Stage = "remux"
)

// StageEvent is emitted when a stage starts (Done=false) and again when
// it finishes (Done=true). Events are advisory; they carry no error
// information and failed stages simply never emit their end event.
type StageEvent struct {
	Stage Stage
	Done  bool
}

// EventFunc receives stage events. It is invoked synchronously on the
// pipeline goroutine, so implementations should return quickly.
type EventFunc func(StageEvent)
